// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/blogicum/internal/seo"
	"github.com/olegiv/blogicum/internal/store"
)

// sitemapPostLimit keeps the sitemap under the protocol limit together
// with pages and categories.
const sitemapPostLimit = seo.MaxURLs - 5000

// SEOHandler serves sitemap.xml and robots.txt.
type SEOHandler struct {
	queries     *store.Queries
	errs        *ErrorPages
	siteURL     string
	disallowAll bool
}

// NewSEOHandler creates a new SEO handler. An empty siteURL is derived
// from each request. disallowAll blocks every crawler.
func NewSEOHandler(db *sql.DB, errs *ErrorPages, siteURL string, disallowAll bool) *SEOHandler {
	return &SEOHandler{
		queries:     store.New(db),
		errs:        errs,
		siteURL:     strings.TrimSuffix(siteURL, "/"),
		disallowAll: disallowAll,
	}
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.queries.ListPublishedCategories(ctx)
	if err != nil {
		h.errs.InternalError(w, r, "failed to list categories for sitemap", "error", err)
		return
	}
	posts, err := h.queries.ListPosts(ctx, store.PublicPosts(time.Now()), sitemapPostLimit, 0)
	if err != nil {
		h.errs.InternalError(w, r, "failed to list posts for sitemap", "error", err)
		return
	}

	b := seo.NewSitemapBuilder(h.baseURL(r))
	b.AddHomepage()
	b.AddStaticPage("/pages/about/")
	b.AddStaticPage("/pages/rules/")
	for _, c := range categories {
		b.AddCategory(seo.SitemapCategory{Slug: c.Slug, CreatedAt: c.CreatedAt})
	}
	for _, p := range posts {
		b.AddPost(seo.SitemapPost{ID: p.ID, PubDate: p.PubDate})
	}

	out, err := b.Build()
	if err != nil {
		h.errs.InternalError(w, r, "failed to build sitemap", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	body := seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.baseURL(r),
		DisallowAll: h.disallowAll,
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(body))
}

func (h *SEOHandler) baseURL(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
