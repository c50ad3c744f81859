package console

import (
	"context"

	"github.com/goliatone/go-admin-console/components/listing"
)

// ViewerContext identifies who is looking at a screen.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// Screen names a list screen.
type Screen string

const (
	ScreenUsers      Screen = "users"
	ScreenProducts   Screen = "products"
	ScreenCategories Screen = "categories"
	ScreenBookings   Screen = "bookings"
)

// Row is one rendered record keyed by column.
type Row map[string]any

// Column describes a table column.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

// FilterOption is one choice of a categorical filter.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterDef describes a categorical filter and its choices. The wildcard
// choice is always first.
type FilterDef struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Options []FilterOption `json:"options"`
}

// StateStore keeps each viewer's list state per screen.
type StateStore interface {
	LoadState(ctx context.Context, viewer ViewerContext, screen Screen) (listing.State, bool, error)
	SaveState(ctx context.Context, viewer ViewerContext, screen Screen, state listing.State) error
	DeleteState(ctx context.Context, viewer ViewerContext, screen Screen) error
}

// ListQuery carries the transitions a request applies to the stored state.
// Nil or zero fields leave the corresponding part of the state untouched.
// Sort without Direction keeps the current direction for the same key, so
// replaying a query is idempotent; ToggleSort flips it explicitly.
type ListQuery struct {
	Search       *string           `json:"search,omitempty"`
	Filters      map[string]string `json:"filters,omitempty"`
	Sort         string            `json:"sort,omitempty"`
	Direction    string            `json:"direction,omitempty"`
	ToggleSort   bool              `json:"toggle_sort,omitempty"`
	Page         int               `json:"page,omitempty"`
	Limit        int               `json:"limit,omitempty"`
	ClearFilters bool              `json:"clear_filters,omitempty"`
	ClearSort    bool              `json:"clear_sort,omitempty"`
}

// ListView is everything a list screen renders.
type ListView struct {
	Screen       Screen               `json:"screen"`
	Title        string               `json:"title"`
	Columns      []Column             `json:"columns"`
	FilterDefs   []FilterDef          `json:"filter_defs"`
	Rows         []Row                `json:"rows"`
	Total        int                  `json:"total"`
	TotalPages   int                  `json:"total_pages"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
	Limits       []int                `json:"limits"`
	From         int                  `json:"from"`
	To           int                  `json:"to"`
	Search       string               `json:"search"`
	Filters      map[string]string    `json:"filters"`
	Sort         *listing.SortSpec    `json:"sort,omitempty"`
	Pages        []listing.PageMarker `json:"pages"`
	Empty        bool                 `json:"empty"`
	EmptyMessage string               `json:"empty_message,omitempty"`
}

// SortDirection reports the active direction for column key, or "" when the
// list is not sorted by it.
func (v ListView) SortDirection(key string) listing.Direction {
	if v.Sort == nil || v.Sort.Key != listing.NormalizeKey(key) {
		return ""
	}
	return v.Sort.Direction
}

// FilterValue returns the active value for filter key, or the wildcard.
func (v ListView) FilterValue(key string) string {
	if value, ok := v.Filters[key]; ok && value != "" {
		return value
	}
	return listing.Wildcard
}
