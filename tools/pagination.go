package tools

import (
	"strconv"
	"strings"
)

// Page is the result of clamping a requested page against the item count.
type Page struct {
	Number     int `json:"number"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	Offset     int `json:"offset"`
}

// PaginationRange is the window of page links shown around the current page.
type PaginationRange struct {
	Pagination          []int `json:"pagination"`
	QtyPages            int   `json:"qty_pages"`
	CurrentPage         int   `json:"current_page"`
	TotalPages          int   `json:"total_pages"`
	StartRange          int   `json:"start_range"`
	StopRange           int   `json:"stop_range"`
	FirstPageOutOfRange bool  `json:"first_page_out_of_range"`
	LastPageOutOfRange  bool  `json:"last_page_out_of_range"`
}

// Paginate turns the raw "page" query value into a valid page number.
// Missing or non-numeric values fall back to page 1; numbers outside
// [1, TotalPages] are clamped. There is always at least one page.
func Paginate(totalItems, perPage int, page string) Page {
	if perPage <= 0 {
		perPage = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil {
		number = 1
	}
	number = clampInt(number, 1, totalPages)

	return Page{
		Number:     number,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Offset:     (number - 1) * perPage,
	}
}

// MakePaginationRange centers a window of qtyPages page numbers on currentPage.
// Near the beginning the window is pushed right, near the end it is pulled
// left; the two adjustments run in that order and may both apply.
func MakePaginationRange(totalPages, qtyPages, currentPage int) PaginationRange {
	middle := (qtyPages + 1) / 2
	if qtyPages < 0 {
		middle = 0
	}
	start := currentPage - middle
	stop := currentPage + middle

	if start < 0 {
		stop += -start
		start = 0
	}

	if stop >= totalPages {
		start -= absInt(totalPages - stop)
	}

	lo := clampInt(start, 0, totalPages)
	hi := clampInt(stop, lo, totalPages)
	pages := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		pages = append(pages, i+1)
	}

	return PaginationRange{
		Pagination:          pages,
		QtyPages:            qtyPages,
		CurrentPage:         currentPage,
		TotalPages:          totalPages,
		StartRange:          start,
		StopRange:           stop,
		FirstPageOutOfRange: currentPage > middle,
		LastPageOutOfRange:  stop < totalPages,
	}
}

// ComputeWindow paginates and builds the link window in one call.
func ComputeWindow(totalItems, perPage, qtyPages int, page string) (Page, PaginationRange) {
	p := Paginate(totalItems, perPage, page)
	return p, MakePaginationRange(p.TotalPages, qtyPages, p.Number)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
