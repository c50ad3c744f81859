package console

import (
	"net/url"
	"strconv"
	"strings"
)

// FilterParamPrefix marks query parameters that set a filter, as in
// "filter.status=active".
const FilterParamPrefix = "filter."

// ParseListQuery reads a ListQuery from request parameters: search, sort,
// dir, toggle, page, limit, clear_filters, clear_sort and filter.<key>. A present
// but empty search clears the search; unparsable numbers are ignored.
func ParseListQuery(values url.Values) ListQuery {
	var q ListQuery
	if values.Has("search") {
		s := strings.TrimSpace(values.Get("search"))
		q.Search = &s
	}
	q.Sort = strings.TrimSpace(values.Get("sort"))
	q.Direction = strings.TrimSpace(values.Get("dir"))
	q.ToggleSort = flag(values.Get("toggle"))
	q.Page = atoi(values.Get("page"))
	q.Limit = atoi(values.Get("limit"))
	q.ClearFilters = flag(values.Get("clear_filters"))
	q.ClearSort = flag(values.Get("clear_sort"))
	for key, vals := range values {
		name, ok := strings.CutPrefix(key, FilterParamPrefix)
		if !ok || name == "" || len(vals) == 0 {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]string{}
		}
		q.Filters[name] = vals[0]
	}
	return q
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func flag(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}
