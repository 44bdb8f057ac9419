package core

import "math"

// Pagination describes one page of a listing.
type Pagination struct {
	Page    int
	PerPage int
	Total   int
}

// NewPagination normalises page and perPage; page numbers start at 1.
// page is capped so that Offset never overflows.
func NewPagination(page, perPage int) Pagination {
	if perPage < 1 {
		perPage = 20
	}
	if page < 1 {
		page = 1
	}
	if limit := math.MaxInt / perPage; page > limit {
		page = limit
	}
	return Pagination{Page: page, PerPage: perPage}
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PerPage }
func (p Pagination) Limit() int  { return p.PerPage }

// Pages is the total number of pages, at least 1.
func (p Pagination) Pages() int {
	if p.Total <= 0 || p.PerPage <= 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.Pages() }
func (p Pagination) PrevNum() int  { return p.Page - 1 }
func (p Pagination) NextNum() int  { return p.Page + 1 }

// Window returns the page numbers to display.
func (p Pagination) Window() []int {
	pages := make([]int, 0, p.Pages())
	for i := 1; i <= p.Pages(); i++ {
		pages = append(pages, i)
	}
	return pages
}
