package listing

import (
	"slices"
	"strings"
)

// ComputePage filters, optionally sorts and paginates records. It never
// mutates records and always returns the same output for the same input.
func ComputePage[T any](records []T, schema Schema[T], criteria Criteria, sort *SortSpec, req PageRequest) Page[T] {
	filtered := Filter(records, schema, criteria)
	if sort != nil {
		SortStable(filtered, schema, *sort)
	}
	return Paginate(filtered, req)
}

// Filter returns, in their original order, the records matching every active
// categorical filter and the free-text search. Filter keys unknown to the
// schema do not constrain the result.
func Filter[T any](records []T, schema Schema[T], criteria Criteria) []T {
	constraints := make([]constraint[T], 0, len(criteria.Filters))
	for key, value := range criteria.Filters {
		if isUnconstrained(value) {
			continue
		}
		get, ok := schema.filter(key)
		if !ok {
			continue
		}
		constraints = append(constraints, constraint[T]{get: get, value: value})
	}
	needle := strings.ToLower(criteria.Search)

	out := make([]T, 0, len(records))
	for _, record := range records {
		if slices.ContainsFunc(constraints, func(c constraint[T]) bool { return c.get(record) != c.value }) {
			continue
		}
		if needle != "" && !matchesSearch(record, schema.Search, needle) {
			continue
		}
		out = append(out, record)
	}
	return out
}

type constraint[T any] struct {
	get   TextAccessor[T]
	value string
}

func matchesSearch[T any](record T, fields []TextAccessor[T], needle string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(record)), needle) {
			return true
		}
	}
	return false
}

// SortStable orders records in place by spec.Key. Ties keep their
// relative order in both directions. Unknown keys leave records untouched.
func SortStable[T any](records []T, schema Schema[T], spec SortSpec) {
	compare, ok := schema.comparator(spec.Key)
	if !ok {
		return
	}
	if spec.Direction == Desc {
		slices.SortStableFunc(records, func(a, b T) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(records, compare)
}

// Paginate slices one page out of records, clamping the requested page into
// [1, TotalPages]. A limit below 1 falls back to DefaultLimit.
func Paginate[T any](records []T, req PageRequest) Page[T] {
	limit := req.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	total := len(records)
	totalPages := TotalPages(total, limit)
	page := clamp(req.Page, 1, totalPages)

	start := (page - 1) * limit
	end := min(start+limit, total)
	visible := make([]T, 0, max(end-start, 0))
	if start < end {
		visible = append(visible, records[start:end]...)
	}
	return Page[T]{
		Visible:    visible,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		Limit:      limit,
	}
}

// TotalPages returns max(1, ceil(total/limit)).
func TotalPages(total, limit int) int {
	if limit < 1 {
		limit = DefaultLimit
	}
	if total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
