package shared

// Page represents one page of a remote collection.
// It is replaced wholesale on every successful fetch.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total"`
}

// NewPage creates a page, truncating items to pageSize when the server returned more
func NewPage[T any](items []T, total int64, pageSize int) Page[T] {
	if pageSize > 0 && len(items) > pageSize {
		items = items[:pageSize]
	}
	if total < int64(len(items)) {
		total = int64(len(items))
	}
	return Page[T]{
		Items:      items,
		TotalCount: total,
	}
}

// EmptyPage returns a page with no items
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// TotalPages returns the number of pages for the given page size
func (p Page[T]) TotalPages(pageSize int) int {
	return TotalPages(p.TotalCount, pageSize)
}

// IsEmpty reports whether the page has no items
func (p Page[T]) IsEmpty() bool {
	return len(p.Items) == 0
}

// TotalPages computes ceil(total / pageSize); zero for an empty collection
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		pages++
	}
	return int(pages)
}

// ClampPage keeps page within [1, max(1, totalPages)]
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
