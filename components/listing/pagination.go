package listing

import "slices"

// AllowedLimits are the page sizes a pagination control may offer.
var AllowedLimits = []int{5, 10, 20, 50}

// IsAllowedLimit reports whether limit is one of AllowedLimits.
func IsAllowedLimit(limit int) bool {
	return slices.Contains(AllowedLimits, limit)
}

// Pagination tracks the current page of a result set. Page always stays in
// [1, max(1, TotalPages)].
type Pagination struct {
	Page       int `json:"page" yaml:"page"`
	Limit      int `json:"limit" yaml:"limit"`
	Total      int `json:"total" yaml:"total"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}

// NewPagination starts on page 1 with the given limit, or DefaultLimit when
// limit is not allowed.
func NewPagination(limit int) Pagination {
	if !IsAllowedLimit(limit) {
		limit = DefaultLimit
	}
	return Pagination{Page: 1, Limit: limit, TotalPages: 1}
}

// WithTotal records a new total and re-clamps the page.
func (p Pagination) WithTotal(total int) Pagination {
	p.Total = max(total, 0)
	p.Limit = p.limit()
	p.TotalPages = TotalPages(p.Total, p.Limit)
	p.Page = clamp(p.Page, 1, p.TotalPages)
	return p
}

// WithPage moves to page, clamped into range.
func (p Pagination) WithPage(page int) Pagination {
	p.Page = clamp(page, 1, max(p.TotalPages, 1))
	return p
}

// WithLimit switches page size and resets to page 1. Limits outside
// AllowedLimits are ignored.
func (p Pagination) WithLimit(limit int) Pagination {
	if !IsAllowedLimit(limit) {
		return p
	}
	p.Limit = limit
	p.Page = 1
	p.TotalPages = TotalPages(p.Total, limit)
	return p
}

// Reset returns to page 1.
func (p Pagination) Reset() Pagination {
	p.Page = 1
	return p
}

// Offset is the zero-based index of the first row on the current page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.limit()
}

// Request converts the pagination into a pipeline page request.
func (p Pagination) Request() PageRequest {
	return PageRequest{Page: p.Page, Limit: p.limit()}
}

func (p Pagination) limit() int {
	if p.Limit < 1 {
		return DefaultLimit
	}
	return p.Limit
}

// PageMarker is one entry of a pagination control: a page number or a gap.
type PageMarker struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

const windowThreshold = 7

// PageWindow lists the page markers to render around current. Up to seven
// pages are listed in full; beyond that the first and last pages are kept,
// with the neighbours of current in between and gaps where pages are skipped.
func PageWindow(current, totalPages int) []PageMarker {
	totalPages = max(totalPages, 1)
	current = clamp(current, 1, totalPages)
	mark := func(n int) PageMarker {
		return PageMarker{Number: n, Current: n == current}
	}

	if totalPages <= windowThreshold {
		markers := make([]PageMarker, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			markers = append(markers, mark(n))
		}
		return markers
	}

	markers := []PageMarker{mark(1)}
	if current > 3 {
		markers = append(markers, PageMarker{Ellipsis: true})
	}
	for n := max(2, current-1); n <= min(totalPages-1, current+1); n++ {
		markers = append(markers, mark(n))
	}
	if current < totalPages-2 {
		markers = append(markers, PageMarker{Ellipsis: true})
	}
	return append(markers, mark(totalPages))
}
