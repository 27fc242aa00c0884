package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when per_page is absent or not allowed.
const DefaultPerPage = 50

// PerPageOptions are the accepted per_page values.
var PerPageOptions = []int{10, 25, 50, 100, 200}

// Params carries the directory list parameters parsed from a query string.
type Params struct {
	Page    int    // 1-indexed
	PerPage int
	Sort    string // empty means store order
	Desc    bool
	Search  string // lowercased, trimmed
}

// ParseParams reads page, per_page, sort, dir and q from q.
// PRE: sortable lists the accepted sort keys
// POST: Page >= 1; PerPage is one of PerPageOptions; Sort is "" or in sortable
func ParseParams(q url.Values, sortable []string) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && slices.Contains(PerPageOptions, n) {
		p.PerPage = n
	}
	if s := q.Get("sort"); slices.Contains(sortable, s) {
		p.Sort = s
	}
	p.Desc = q.Get("dir") == "desc"
	p.Search = strings.ToLower(strings.TrimSpace(q.Get("q")))
	return p
}

// Matches reports whether any of fields contains the search term, case-insensitively.
// An empty search matches everything.
func (p Params) Matches(fields ...string) bool {
	if p.Search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), p.Search) {
			return true
		}
	}
	return false
}

// PageInfo describes the page that was served.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo clamps page into [1, TotalPages]. An empty list has one empty page.
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first item on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paginate filters items with keep, orders them with cmp when sort is set,
// and cuts out the requested page. The result is never nil.
func Paginate[T any](items []T, p Params, keep func(T) bool, cmp func(a, b T) int) ([]T, PageInfo) {
	matched := make([]T, 0, len(items))
	for _, it := range items {
		if keep == nil || keep(it) {
			matched = append(matched, it)
		}
	}
	if p.Sort != "" && cmp != nil {
		slices.SortStableFunc(matched, func(a, b T) int {
			if p.Desc {
				return cmp(b, a)
			}
			return cmp(a, b)
		})
	}
	info := NewPageInfo(p.Page, p.PerPage, len(matched))
	end := min(info.Offset()+info.PerPage, len(matched))
	return matched[info.Offset():end], info
}
