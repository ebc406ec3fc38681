// Package pagination implements page/per-page style pagination with a
// total-count envelope, the shape the statutory ledger views expose.
package pagination

// Pagination carries the requested page window.
type Pagination struct {
	Page    int `form:"page,default=1" validate:"gte=1"`
	PerPage int `form:"per_page,default=20" validate:"gte=1,lte=250"`
}

// PageInfo is returned alongside every page of results.
type PageInfo struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

func (p Pagination) Normalize() Pagination {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PerPage < 1 {
		out.PerPage = 20
	}
	if out.PerPage > 250 {
		out.PerPage = 250
	}
	return out
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

func (p Pagination) Limit() int {
	return p.Normalize().PerPage
}

// BuildPageInfo derives the envelope from the request and the total row count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	n := p.Normalize()
	pages := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 {
		pages++
	}
	return PageInfo{
		Page:       n.Page,
		PerPage:    n.PerPage,
		TotalCount: total,
		TotalPages: pages,
	}
}
