package dto

// Page is one page of a filtered, sorted collection together with the
// derived pagination metadata.
//
// TotalPages, HasNextPage and HasPreviousPage are always recomputed from
// (TotalItems, CurrentPage, PageSize) in NewPage - never stored
// independently - so the four derived fields cannot drift.
type Page[T any] struct {
	Items           []T  `json:"items"`
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewPage wraps one page of items with derived counts and flags.
// TotalItems counts the full filtered set, not the page slice, so a page
// number beyond the last page yields empty Items with correct totals.
func NewPage[T any](items []T, totalItems, currentPage, pageSize int) *Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}

	return &Page[T]{
		Items:           items,
		CurrentPage:     currentPage,
		PageSize:        pageSize,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     currentPage < totalPages,
		HasPreviousPage: currentPage > 1,
	}
}
