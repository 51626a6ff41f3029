// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/cache"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/store"
)

// CategoryHandler serves category listings.
type CategoryHandler struct {
	queries    *store.Queries
	categories *cache.CategoryCache
	renderer   *render.Renderer
	errs       *ErrorPages
	perPage    int
}

// NewCategoryHandler creates a new CategoryHandler. Category rows are
// looked up through categories.
func NewCategoryHandler(db *sql.DB, categories *cache.CategoryCache, renderer *render.Renderer, errs *ErrorPages, perPage int) *CategoryHandler {
	return &CategoryHandler{
		queries:    store.New(db),
		categories: categories,
		renderer:   renderer,
		errs:       errs,
		perPage:    perPage,
	}
}

// CategoryPageData is passed to the category template.
type CategoryPageData struct {
	Category store.Category
	PostList
}

// Show handles GET /category/{slug}. Unknown and unpublished categories
// are not found.
func (h *CategoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, err := h.categories.Published(r.Context(), slug)
	if err != nil {
		h.errs.FromError(w, r, blog.Lookup(err), "failed to load category", "slug", slug)
		return
	}

	filter := store.PublicPosts(time.Now()).InCategory(category.ID)
	list, err := listPosts(r.Context(), h.queries, filter, r.URL.Query().Get("page"), h.perPage, categoryURL(category.Slug))
	if err != nil {
		h.errs.InternalError(w, r, "failed to list category posts", "error", err, "slug", slug)
		return
	}

	renderPage(w, r, h.renderer, h.errs, TemplateCategory, render.TemplateData{
		Title: category.Title,
		Data:  CategoryPageData{Category: category, PostList: list},
	})
}
