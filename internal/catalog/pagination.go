package catalog

// Page is one window over an already-materialized result list.
type Page[T any] struct {
	Items  []T
	Offset int
	Limit  int
	// Total is the unpaginated count.
	Total int
	// NextOffset is nil on the last page.
	NextOffset *int
}

// HasMore reports whether another page follows.
func (p Page[T]) HasMore() bool {
	return p.NextOffset != nil
}

// Paginate slices items. offset is clamped to at least 0 and limit to at
// least 1. It never re-queries.
func Paginate[T any](items []T, offset, limit int) Page[T] {
	offset = max(offset, 0)
	limit = max(limit, 1)
	total := len(items)

	page := Page[T]{Offset: offset, Limit: limit, Total: total}

	start := min(offset, total)
	end := total
	if limit < total-start {
		end = start + limit
	}
	page.Items = items[start:end:end]

	if next := end; next < total {
		page.NextOffset = &next
	}
	return page
}
