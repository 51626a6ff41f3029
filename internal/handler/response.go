// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/render"
)

// ErrorPages renders the 403, 404 and 500 pages. When a page cannot be
// rendered it falls back to a plain-text response.
type ErrorPages struct {
	renderer *render.Renderer
}

// NewErrorPages creates the error page renderer.
func NewErrorPages(renderer *render.Renderer) *ErrorPages {
	return &ErrorPages{renderer: renderer}
}

// NotFound writes the 404 page.
func (e *ErrorPages) NotFound(w http.ResponseWriter, r *http.Request) {
	e.render(w, r, http.StatusNotFound, TemplateNotFound, "Page not found")
}

// Forbidden writes the 403 page.
func (e *ErrorPages) Forbidden(w http.ResponseWriter, r *http.Request) {
	e.render(w, r, http.StatusForbidden, TemplateForbidden, "Permission denied")
}

// CSRFFailure writes the 403 page shown for rejected cross-origin posts.
func (e *ErrorPages) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	e.render(w, r, http.StatusForbidden, TemplateCSRFFailure, "Request rejected")
}

// InternalError logs logMsg and writes the 500 page.
func (e *ErrorPages) InternalError(w http.ResponseWriter, r *http.Request, logMsg string, args ...any) {
	slog.Error(logMsg, append(args, "path", r.URL.Path)...)
	e.render(w, r, http.StatusInternalServerError, TemplateServerError, "Server error")
}

// FromError maps blog.ErrNotFound to 404, blog.ErrForbidden to 403 and
// anything else to 500.
func (e *ErrorPages) FromError(w http.ResponseWriter, r *http.Request, err error, logMsg string, args ...any) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		e.NotFound(w, r)
	case errors.Is(err, blog.ErrForbidden):
		e.Forbidden(w, r)
	default:
		e.InternalError(w, r, logMsg, append(args, "error", err)...)
	}
}

// Recoverer turns panics into the 500 page.
func (e *ErrorPages) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				e.InternalError(w, r, "panic serving request",
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (e *ErrorPages) render(w http.ResponseWriter, r *http.Request, status int, name, title string) {
	if e.renderer != nil && e.renderer.Has(name) {
		err := e.renderer.RenderStatus(w, r, status, name, render.TemplateData{Title: title})
		if err == nil {
			return
		}
		slog.Error("failed to render error page", "template", name, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

// renderPage renders a page with status 200, or the 500 page on failure.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, errs *ErrorPages, name string, data render.TemplateData) {
	if err := renderer.Render(w, r, name, data); err != nil {
		errs.InternalError(w, r, "failed to render page", "template", name, "error", err)
	}
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeSuccess)
}

// parseIDParam parses a positive integer route parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, blog.ErrNotFound
	}
	return id, nil
}
