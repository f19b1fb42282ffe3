package models

import "math"

// Pagination is the page metadata returned by every listing endpoint.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPagination builds page metadata for a listing of total items viewed
// page by page with the given size.
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     int64(page*pageSize) < total,
		HasPrev:     page > 1,
	}
}
