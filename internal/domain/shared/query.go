package shared

import (
	"maps"
	"reflect"
)

const (
	// DefaultPage is the first page of every collection
	DefaultPage = 1
	// DefaultPageSize is used when a view does not configure one
	DefaultPageSize = 20
)

// ListQuery holds the filter, search and pagination state of one collection view.
// Filter keys are logical names (status, product, date_from, ...); each resource
// maps them to its own wire parameter names.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]any
}

// DefaultListQuery returns a query with default values
func DefaultListQuery() ListQuery {
	return ListQuery{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Filters:  make(map[string]any),
	}
}

// NewListQuery returns a query on page 1 with the given page size
func NewListQuery(pageSize int) ListQuery {
	q := DefaultListQuery()
	if pageSize > 0 {
		q.PageSize = pageSize
	}
	return q
}

// SetFilter sets one filter field and resets the page to 1.
// A nil or empty-string value removes the filter.
func (q *ListQuery) SetFilter(key string, value any) {
	if q.Filters == nil {
		q.Filters = make(map[string]any)
	}
	if isEmptyFilterValue(value) {
		delete(q.Filters, key)
	} else {
		q.Filters[key] = value
	}
	q.Page = DefaultPage
}

// SetSearch sets the search text and resets the page to 1
func (q *ListQuery) SetSearch(text string) {
	q.Search = text
	q.Page = DefaultPage
}

// SetPageSize changes the page size and resets the page to 1.
// Non-positive sizes are ignored.
func (q *ListQuery) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	q.PageSize = size
	q.Page = DefaultPage
}

// Filter returns the value of a filter and whether it is set
func (q ListQuery) Filter(key string) (any, bool) {
	v, ok := q.Filters[key]
	return v, ok
}

// WithPage returns a copy of the query positioned on the given page
func (q ListQuery) WithPage(page int) ListQuery {
	c := q.Clone()
	c.Page = page
	return c
}

// Clone returns a deep copy of the query
func (q ListQuery) Clone() ListQuery {
	c := q
	c.Filters = make(map[string]any, len(q.Filters))
	maps.Copy(c.Filters, q.Filters)
	return c
}

// Equal reports whether two queries would produce the same request
func (q ListQuery) Equal(other ListQuery) bool {
	if q.Page != other.Page || q.PageSize != other.PageSize || q.Search != other.Search {
		return false
	}
	if len(q.Filters) != len(other.Filters) {
		return false
	}
	for k, v := range q.Filters {
		ov, ok := other.Filters[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// Offset returns the zero-based index of the first item of the current page
func (q ListQuery) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

func isEmptyFilterValue(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
