package jsonapi

import (
	"net/url"
	"strconv"
)

// MaxPageSize caps page[size].
const MaxPageSize = 100

// Pagination describes one page of a collection.
type Pagination struct {
	Total   int    // total number of items
	Page    int    // 1-based
	PerPage int
	BaseURL string // used for links; empty disables them
}

// NewPagination creates a Pagination, clamping page and perPage to valid
// values.
func NewPagination(total, page, perPage int, baseURL string) *Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return &Pagination{Total: total, Page: page, PerPage: perPage, BaseURL: baseURL}
}

// TotalPages returns the number of pages, at least 1.
func (p *Pagination) TotalPages() int {
	pages := p.Total / p.PerPage
	if p.Total%p.PerPage != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Bounds returns the half-open index range of the current page within a
// collection of Total items. Pages past the end yield an empty range.
func (p *Pagination) Bounds() (start, end int) {
	if p.PerPage < 1 || p.Page < 1 || p.Page-1 > p.Total/p.PerPage {
		return p.Total, p.Total
	}
	start = min((p.Page-1)*p.PerPage, p.Total)
	end = start + min(p.PerPage, p.Total-start)
	return start, end
}

// Links generates pagination links.
func (p *Pagination) Links() *Links {
	if p.BaseURL == "" {
		return nil
	}
	last := p.TotalPages()
	links := &Links{
		Self:  p.buildURL(p.Page),
		First: p.buildURL(1),
		Last:  p.buildURL(last),
	}
	if p.Page > 1 {
		links.Prev = p.buildURL(p.Page - 1)
	}
	if p.Page < last {
		links.Next = p.buildURL(p.Page + 1)
	}
	return links
}

func (p *Pagination) buildURL(page int) string {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return p.BaseURL
	}
	q := u.Query()
	q.Set("page[number]", strconv.Itoa(page))
	q.Set("page[size]", strconv.Itoa(p.PerPage))
	u.RawQuery = q.Encode()
	return u.String()
}

// Meta returns pagination metadata.
func (p *Pagination) Meta() Meta {
	return Meta{
		"total":    p.Total,
		"page":     p.Page,
		"per_page": p.PerPage,
		"pages":    p.TotalPages(),
	}
}

// ParsePaginationParams reads page[number] and page[size] from a query.
// ok is false when neither is present.
func ParsePaginationParams(query url.Values, defaultPerPage int) (page, perPage int, ok bool) {
	page, perPage = 1, defaultPerPage
	if v := query.Get("page[number]"); v != "" {
		ok = true
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := query.Get("page[size]"); v != "" {
		ok = true
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perPage = n
		}
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	return page, perPage, ok
}
