package listing

import "maps"

// State is an immutable snapshot of a list screen's search, filters, sort and
// pagination. Every transition returns a new State and leaves the receiver
// untouched.
type State struct {
	Criteria   Criteria   `json:"criteria" yaml:"criteria"`
	Sort       *SortSpec  `json:"sort,omitempty" yaml:"sort,omitempty"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// NewState returns an unfiltered, unsorted state on page 1.
func NewState(limit int) State {
	return State{Pagination: NewPagination(limit)}
}

// WithSearch replaces the free-text search and returns to page 1.
func (s State) WithSearch(search string) State {
	s.Criteria = s.Criteria.Clone()
	s.Criteria.Search = search
	s.Pagination = s.Pagination.Reset()
	return s
}

// WithFilter sets one categorical filter and returns to page 1. An empty or
// wildcard value removes the constraint.
func (s State) WithFilter(key, value string) State {
	filters := maps.Clone(s.Criteria.Filters)
	if filters == nil {
		filters = map[string]string{}
	}
	key = NormalizeKey(key)
	if isUnconstrained(value) {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	s.Criteria = Criteria{Search: s.Criteria.Search, Filters: filters}
	s.Pagination = s.Pagination.Reset()
	return s
}

// ClearFilters drops every categorical filter and the search.
func (s State) ClearFilters() State {
	s.Criteria = Criteria{}
	s.Pagination = s.Pagination.Reset()
	return s
}

// WithPage moves to page, clamped against the last known total.
func (s State) WithPage(page int) State {
	s.Pagination = s.Pagination.WithPage(page)
	return s
}

// WithLimit switches page size (allowed limits only) and returns to page 1.
func (s State) WithLimit(limit int) State {
	s.Pagination = s.Pagination.WithLimit(limit)
	return s
}

// ToggleSort sorts by key ascending, or flips the direction when key is
// already the active sort.
func (s State) ToggleSort(key string) State {
	key = NormalizeKey(key)
	if key == "" {
		return s
	}
	next := SortSpec{Key: key, Direction: Asc}
	if s.Sort != nil && NormalizeKey(s.Sort.Key) == key {
		next.Direction = s.Sort.Direction.Flip()
	}
	s.Sort = &next
	return s
}

// WithSort sets the sort explicitly.
func (s State) WithSort(key string, dir Direction) State {
	key = NormalizeKey(key)
	if key == "" {
		return s.ClearSort()
	}
	s.Sort = &SortSpec{Key: key, Direction: dir}
	return s
}

// ClearSort restores the record set's natural order.
func (s State) ClearSort() State {
	s.Sort = nil
	return s
}

// Apply runs the pipeline for state and returns the page together with the
// state reconciled against the new total.
func Apply[T any](state State, records []T, schema Schema[T]) (Page[T], State) {
	page := ComputePage(records, schema, state.Criteria, state.Sort, state.Pagination.Request())
	state.Pagination = state.Pagination.WithTotal(page.Total)
	return page, state
}
