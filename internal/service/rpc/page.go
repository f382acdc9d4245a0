package rpc

import (
	"github.com/oggyb/muzz-matching/internal/filter"
	"github.com/oggyb/muzz-matching/internal/utils/pagination"
)

// Page is the wire shape of a paginated result.
type Page[V any] struct {
	Items         []V     `json:"items"`
	PageNumber    int     `json:"page_number"`
	PageSize      int     `json:"page_size"`
	TotalCount    int64   `json:"total_count"`
	TotalPages    int     `json:"total_pages"`
	NextPageToken *string `json:"next_page_token,omitempty"`
}

// PageOf converts a result page, mapping each item through view.
func PageOf[T, V any](p *pagination.Page[T], view func(T) V) Page[V] {
	items := make([]V, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, view(it))
	}
	return Page[V]{
		Items:         items,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalCount:    p.TotalCount,
		TotalPages:    p.TotalPages,
		NextPageToken: pagination.NextToken(p),
	}
}

// Paging is embedded in list requests.
type Paging struct {
	PageNumber int    `json:"page_number"`
	PageSize   int    `json:"page_size"`
	PageToken  string `json:"page_token"`
}

// Resolve applies the page token (if any) and caller-side defaults:
// an unset number is page 1, an unset size is def, sizes above max are capped.
func (p Paging) Resolve(def, max int) (number, size int, err error) {
	number, size = p.PageNumber, p.PageSize
	if p.PageToken != "" {
		tok, err := pagination.DecodeToken(p.PageToken)
		if err != nil {
			return 0, 0, err
		}
		number, size = tok.Page, tok.Size
	}
	return filter.PageNumberOrDefault(number), filter.ClampPageSize(size, def, max), nil
}
