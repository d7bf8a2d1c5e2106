package viewmodel

import (
	"net/url"
	"strconv"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
)

// PageLink is one numbered pagination control.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// Pagination contains pagination metadata for list views.
type Pagination struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	StartIndex int
	EndIndex   int
	TotalCount int
	PrevURL    string
	NextURL    string
	Links      []PageLink
}

// NewPagination derives the pagination controls for basePath from a page descriptor.
func NewPagination(basePath string, page model.PageDescriptor, numbers []int) Pagination {
	p := Pagination{
		Page:       page.Index,
		TotalPages: page.TotalPages,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		StartIndex: page.FirstItem,
		EndIndex:   page.LastItem,
		TotalCount: page.TotalItems,
	}
	if p.HasPrev {
		p.PrevURL = PageURL(basePath, page.Index-1)
	}
	if p.HasNext {
		p.NextURL = PageURL(basePath, page.Index+1)
	}
	p.Links = make([]PageLink, 0, len(numbers))
	for _, n := range numbers {
		p.Links = append(p.Links, PageLink{Number: n, URL: PageURL(basePath, n), Current: n == page.Index})
	}
	return p
}

// PageURL returns basePath with the page query parameter set.
func PageURL(basePath string, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return basePath + "?" + q.Encode()
}
