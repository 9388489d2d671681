package repository

import "gorm.io/gorm"

// Page selects a window of a listing. A zero PageSize disables pagination.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) apply(query *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return query
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * p.PageSize
	return query.Offset(offset).Limit(p.PageSize)
}
