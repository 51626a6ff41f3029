// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/blogicum/internal/render"
)

// PageHandler serves the static informational pages.
type PageHandler struct {
	renderer *render.Renderer
	errs     *ErrorPages
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *render.Renderer, errs *ErrorPages) *PageHandler {
	return &PageHandler{renderer: renderer, errs: errs}
}

// About handles GET /pages/about.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, h.errs, TemplateAbout, render.TemplateData{Title: "About"})
}

// Rules handles GET /pages/rules.
func (h *PageHandler) Rules(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, h.errs, TemplateRules, render.TemplateData{Title: "Rules"})
}
