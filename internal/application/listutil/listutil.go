// Package listutil pages in-memory result lists from query parameters.
package listutil

import (
	"net/url"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// PageInfo carries pagination metadata returned alongside a page.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// DefaultPerPage is the page size when only page is given.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100, 200}

// ParsePageParams extracts page and per_page from URL query values.
// The second result is false when neither parameter is present, meaning
// the caller should return the full list.
// PRE: none
// POST: returned PageParams has Page >= 1 and PerPage in PerPageOptions
func ParsePageParams(q url.Values) (PageParams, bool) {
	if !q.Has("page") && !q.Has("per_page") {
		return PageParams{}, false
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}, true
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(p PageParams, total int) PageInfo {
	perPage := p.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page := min(max(p.Page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paginate returns the rows on the requested page and the page metadata.
// POST: len(rows) <= PerPage; rows keep their input order
func Paginate[T any](list []T, p PageParams) ([]T, PageInfo) {
	info := NewPageInfo(p, len(list))
	start := min(info.Offset(), len(list))
	end := min(start+info.PerPage, len(list))
	return list[start:end], info
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
