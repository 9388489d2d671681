package dto

import "math"

// DefaultPageSize is used by paginated listings when no size is requested.
const DefaultPageSize = 10

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// PageRequest carries page query parameters.
type PageRequest struct {
	Page     int `query:"page" validate:"omitempty,gte=1"`
	PageSize int `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// Normalize fills in defaults for unset values.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// NewPaginationMeta computes page counts for a total.
func NewPaginationMeta(page PageRequest, total int64) PaginationMeta {
	page = page.Normalize()
	return PaginationMeta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(page.PageSize))),
	}
}
