package listing

import (
	"maps"
	"strings"
)

// Wildcard is the filter value meaning "no constraint".
const Wildcard = "all"

// DefaultLimit is the page size used when none (or an invalid one) is supplied.
const DefaultLimit = 10

// Direction orders sorted results.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps user input onto a Direction, defaulting to Asc.
func ParseDirection(value string) Direction {
	if strings.EqualFold(strings.TrimSpace(value), string(Desc)) {
		return Desc
	}
	return Asc
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortSpec names the active sort key and its direction.
type SortSpec struct {
	Key       string    `json:"key" yaml:"key"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Criteria holds the free-text search and the categorical filters applied to a record set.
type Criteria struct {
	Search  string            `json:"search" yaml:"search"`
	Filters map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// Active returns the filters that actually constrain results (wildcards and blanks dropped).
func (c Criteria) Active() map[string]string {
	out := make(map[string]string, len(c.Filters))
	for key, value := range c.Filters {
		if isUnconstrained(value) {
			continue
		}
		out[NormalizeKey(key)] = value
	}
	return out
}

// Clone returns a copy that shares no mutable state with c.
func (c Criteria) Clone() Criteria {
	return Criteria{Search: c.Search, Filters: maps.Clone(c.Filters)}
}

func isUnconstrained(value string) bool {
	return value == "" || value == Wildcard
}

// PageRequest asks for one page of a result set.
type PageRequest struct {
	Page  int `json:"page" yaml:"page"`
	Limit int `json:"limit" yaml:"limit"`
}

// Page is the visible slice of a filtered, sorted record set plus its counts.
type Page[T any] struct {
	Visible    []T `json:"visible"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}
