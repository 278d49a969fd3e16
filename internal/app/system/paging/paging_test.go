package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		target     string
		page, size int
	}{
		{"/audit", 1, PageSize},
		{"/audit?page=3", 3, PageSize},
		{"/audit?page=0&page_size=-2", 1, PageSize},
		{"/audit?page=x&page_size=y", 1, PageSize},
		{"/audit?page=2&page_size=10", 2, 10},
		{"/audit?page_size=5000", 1, MaxPageSize},
	}
	for _, tt := range tests {
		p := Parse(httptest.NewRequest("GET", tt.target, nil))
		if p.Page != tt.page || p.Size != tt.size {
			t.Errorf("%s: got page=%d size=%d, want %d/%d", tt.target, p.Page, p.Size, tt.page, tt.size)
		}
	}
}

func TestParams_OffsetLimit(t *testing.T) {
	p := Params{Page: 3, Size: 20}
	if p.Offset() != 40 || p.Limit() != 20 {
		t.Errorf("offset=%d limit=%d", p.Offset(), p.Limit())
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		total int64
		want  Page
	}{
		{"empty", Params{Page: 1, Size: 50}, 0, Page{Page: 1, PageSize: 50, TotalPages: 1}},
		{"first of three", Params{Page: 1, Size: 10}, 25, Page{Page: 1, PageSize: 10, Total: 25, TotalPages: 3, HasNext: true}},
		{"middle", Params{Page: 2, Size: 10}, 25, Page{Page: 2, PageSize: 10, Total: 25, TotalPages: 3, HasPrev: true, HasNext: true}},
		{"last exact", Params{Page: 2, Size: 10}, 20, Page{Page: 2, PageSize: 10, Total: 20, TotalPages: 2, HasPrev: true}},
		{"zero size", Params{Page: 1}, 10, Page{Page: 1, PageSize: PageSize, Total: 10, TotalPages: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPage(tt.p, tt.total); got != tt.want {
				t.Errorf("NewPage = %+v, want %+v", got, tt.want)
			}
		})
	}
}
