// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"strconv"
)

// Pagination describes one page of a listing.
type Pagination struct {
	Number     int
	TotalPages int
	TotalItems int64
	PerPage    int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
	Pages      []PaginationPage
	BaseURL    string
}

// PaginationPage represents a single page link.
type PaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// NewPagination resolves the requested page number against the total.
// A missing or non-numeric page yields page 1; a number outside the range
// yields the last page. An empty listing still has one page.
func NewPagination(pageParam string, totalItems int64, perPage int, baseURL string) Pagination {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	number := 1
	if pageParam != "" {
		if n, err := strconv.Atoi(pageParam); err == nil {
			number = n
			if number < 1 || number > totalPages {
				number = totalPages
			}
		}
	}

	p := Pagination{
		Number:     number,
		TotalPages: totalPages,
		TotalItems: totalItems,
		PerPage:    perPage,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
		PrevPage:   number - 1,
		NextPage:   number + 1,
		BaseURL:    baseURL,
	}
	p.Pages = p.pageLinks()
	return p
}

// Offset returns the number of items before this page.
func (p Pagination) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// URL returns the link to page n.
func (p Pagination) URL(n int) string {
	return fmt.Sprintf("%s?page=%d", p.BaseURL, n)
}

// pageLinks shows up to five pages around the current one, plus the
// first and last page separated by ellipses.
func (p Pagination) pageLinks() []PaginationPage {
	if p.TotalPages <= 1 {
		return nil
	}

	start := max(p.Number-2, 1)
	end := min(start+4, p.TotalPages)
	start = max(end-4, 1)

	var pages []PaginationPage
	if start > 1 {
		pages = append(pages, PaginationPage{Number: 1, URL: p.URL(1)})
		if start > 2 {
			pages = append(pages, PaginationPage{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		pages = append(pages, PaginationPage{Number: i, URL: p.URL(i), IsCurrent: i == p.Number})
	}
	if end < p.TotalPages {
		if end < p.TotalPages-1 {
			pages = append(pages, PaginationPage{IsEllipsis: true})
		}
		pages = append(pages, PaginationPage{Number: p.TotalPages, URL: p.URL(p.TotalPages)})
	}
	return pages
}
