package domain

// DefaultPageSize is the number of trips shown per page of the listing.
const DefaultPageSize = 12

// MaxPageSize caps any page size override, including the daily pick sample.
const MaxPageSize = 100

// PaginationParams carries page/limit values from the view state to the upstream API.
// Page is 1-indexed. Limit is the page size and stays fixed for a browser's lifetime.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional values.
// Nil pointers fall back to sane defaults (page=1, limit=12).
// The limit is capped at MaxPageSize to prevent runaway queries.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > MaxPageSize {
			p.Limit = MaxPageSize
		}
	}
	return p
}

// TotalPages returns ceil(total / Limit), never less than 1 so an empty
// listing still reads as "page 1 of 1".
func (p PaginationParams) TotalPages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 1
	}
	return (total + p.Limit - 1) / p.Limit
}

// HasNext reports whether a page after the current one exists.
func (p PaginationParams) HasNext(total int) bool {
	return p.Page < p.TotalPages(total)
}

// HasPrevious reports whether the current page is past the first one.
func (p PaginationParams) HasPrevious() bool {
	return p.Page > 1
}

// CanGoTo reports whether page is a valid navigation target: inside
// [1, totalPages] and different from the current page.
func (p PaginationParams) CanGoTo(page, total int) bool {
	return page >= 1 && page <= p.TotalPages(total) && page != p.Page
}
