// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in paged lists.
const PageSize = 50

// MaxPageSize bounds the page_size query parameter.
const MaxPageSize = 200

// Params is a 1-based page request.
type Params struct {
	Page int
	Size int
}

// Parse reads "page" and "page_size" from the query string. Missing or
// invalid values fall back to page 1 and PageSize; sizes above MaxPageSize
// are clamped.
func Parse(r *http.Request) Params {
	p := Params{Page: 1, Size: PageSize}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(query.Get(r, "page_size")); err == nil && n > 0 {
		p.Size = min(n, MaxPageSize)
	}
	return p
}

// Offset is the number of rows to skip.
func (p Params) Offset() int64 { return int64((p.Page - 1) * p.Size) }

// Limit is the number of rows to fetch.
func (p Params) Limit() int64 { return int64(p.Size) }

// Page describes one page of a counted result set.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// NewPage computes the page indicators for p over total rows.
func NewPage(p Params, total int64) Page {
	size := int64(p.Size)
	if size <= 0 {
		size = PageSize
	}
	pages := int((total + size - 1) / size)
	if pages < 1 {
		pages = 1
	}
	return Page{
		Page:       p.Page,
		PageSize:   int(size),
		Total:      total,
		TotalPages: pages,
		HasPrev:    p.Page > 1,
		HasNext:    p.Page < pages,
	}
}
