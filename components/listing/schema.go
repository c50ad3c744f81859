package listing

import (
	"cmp"
	"sort"
	"strings"
	"time"

	"github.com/ettle/strcase"
)

// TextAccessor reads a text attribute from a record.
type TextAccessor[T any] func(T) string

// Comparator orders two records by a single attribute. It returns a negative
// number when a sorts first, zero on ties and a positive number otherwise.
type Comparator[T any] func(a, b T) int

// StringKey compares a string attribute lexicographically.
func StringKey[T any](get func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(get(a), get(b))
	}
}

// NumberKey compares a numeric attribute.
func NumberKey[T any, N cmp.Ordered](get func(T) N) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(get(a), get(b))
	}
}

// TimeKey compares a timestamp attribute chronologically.
func TimeKey[T any](get func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		return get(a).Compare(get(b))
	}
}

// Schema describes which attributes of T the pipeline can search, filter and sort on.
// Keys are matched after NormalizeKey, so "createdAt" and "created_at" address the same field.
type Schema[T any] struct {
	Search  []TextAccessor[T]
	Filters map[string]TextAccessor[T]
	Sorts   map[string]Comparator[T]
}

// NormalizeKey converts a field key into its canonical snake_case form.
func NormalizeKey(key string) string {
	return strcase.ToSnake(strings.TrimSpace(key))
}

// FilterKeys lists the filterable field keys in canonical, sorted form.
func (s Schema[T]) FilterKeys() []string {
	return sortedKeys(s.Filters)
}

// SortKeys lists the sortable field keys in canonical, sorted form.
func (s Schema[T]) SortKeys() []string {
	return sortedKeys(s.Sorts)
}

// CanSort reports whether key names a sortable field.
func (s Schema[T]) CanSort(key string) bool {
	_, ok := lookup(s.Sorts, key)
	return ok
}

func (s Schema[T]) filter(key string) (TextAccessor[T], bool) {
	return lookup(s.Filters, key)
}

func (s Schema[T]) comparator(key string) (Comparator[T], bool) {
	return lookup(s.Sorts, key)
}

func lookup[V any](fields map[string]V, key string) (V, bool) {
	if v, ok := fields[key]; ok {
		return v, true
	}
	want := NormalizeKey(key)
	for name, v := range fields {
		if NormalizeKey(name) == want {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func sortedKeys[V any](fields map[string]V) []string {
	keys := make([]string, 0, len(fields))
	for name := range fields {
		keys = append(keys, NormalizeKey(name))
	}
	sort.Strings(keys)
	return keys
}
