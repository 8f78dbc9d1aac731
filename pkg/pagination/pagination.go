package pagination

import (
	"net/url"
	"strconv"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/query"
)

// PageRequest is a 1-based page of a listing with an optional sort.
type PageRequest struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Sort     []query.SortField `json:"sort,omitempty"`
}

// Normalize clamps the request into the bounds of cfg.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

// Offset returns the number of rows before the page.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, page_size, and sort from a query string.
// Unparseable numbers fall back to the defaults of cfg.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	req := PageRequest{
		Page:     atoi(values.Get("page")),
		PageSize: atoi(values.Get("page_size")),
		Sort:     query.ParseSortFields(values.Get("sort")),
	}
	req.Normalize(cfg)
	return req
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// PageResult is one page of a listing. Data is never null in JSON.
type PageResult[T any] struct {
	Data       []T  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPageResult wraps data with page metadata. An empty listing still has
// one (empty) page.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}
	pages := max((total+pageSize-1)/pageSize, 1)

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}
