// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/blogicum/internal/cache"
	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	DB              *sql.DB
	Sessions        *scs.SessionManager
	Renderer        *render.Renderer
	Images          *imaging.Processor
	Categories      *cache.CategoryCache
	Cache           cache.Cacher
	CacheBackend    string
	LoginProtection *middleware.LoginProtection
	StaticFS        fs.FS
	PostsPerPage    int
	IsDevelopment   bool
	// Addr is the listen address, trusted as a cross-origin source in
	// development.
	Addr string
	// RequestLogging enables chi's request logger.
	RequestLogging bool
	// SiteURL is the public base URL used in sitemap.xml and robots.txt.
	// Empty means derived from the request.
	SiteURL string
}

// NewRouter builds the HTTP handler for the whole site.
func NewRouter(cfg RouterConfig) http.Handler {
	errs := NewErrorPages(cfg.Renderer)

	posts := NewPostHandler(cfg.DB, cfg.Renderer, errs, cfg.Images, cfg.PostsPerPage)
	comments := NewCommentHandler(cfg.DB, cfg.Renderer, errs)
	categories := NewCategoryHandler(cfg.DB, cfg.Categories, cfg.Renderer, errs, cfg.PostsPerPage)
	profiles := NewProfileHandler(cfg.DB, cfg.Renderer, errs, cfg.PostsPerPage)
	authHandler := NewAuthHandler(cfg.DB, cfg.Renderer, errs, cfg.Sessions, cfg.LoginProtection)
	pages := NewPageHandler(cfg.Renderer, errs)
	health := NewHealthHandler(cfg.DB, cfg.Images.UploadDir(), cfg.CacheBackend, cfg.Cache)
	seoHandler := NewSEOHandler(cfg.DB, errs, cfg.SiteURL, cfg.IsDevelopment)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.RequestLogging {
		r.Use(chimw.Logger)
	}
	r.Use(errs.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))

	r.NotFound(errs.NotFound)

	r.Get(RouteHealth, health.Health)
	r.Get(RouteSitemap, seoHandler.Sitemap)
	r.Get(RouteRobots, seoHandler.Robots)

	// Static assets: cache for 1 year
	if cfg.StaticFS != nil {
		static := http.StripPrefix("/static/", http.FileServerFS(cfg.StaticFS))
		r.Handle("/static/*", middleware.StaticCache(31536000)(middleware.NoDirListing(errs.NotFound)(static)))
	}
	// Uploaded post images: cache for 1 week
	media := http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.Images.UploadDir())))
	r.Handle("/media/*", middleware.StaticCache(604800)(middleware.NoDirListing(errs.NotFound)(media)))

	csrfConfig := middleware.DefaultCSRFConfig(cfg.Addr, cfg.IsDevelopment)
	csrfConfig.ErrorHandler = http.HandlerFunc(errs.CSRFFailure)

	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.LoadAndSave)
		r.Use(middleware.CSRF(csrfConfig))
		r.Use(middleware.LoadUser(cfg.Sessions, cfg.DB))

		r.Get(RouteRoot, posts.Index)
		r.Get(RoutePostDetail, posts.Detail)
		r.Get(RouteCategory, categories.Show)
		r.Get(RouteProfile, profiles.Show)
		r.Get(RouteAbout, pages.About)
		r.Get(RouteRules, pages.Rules)

		r.Group(func(r chi.Router) {
			if cfg.LoginProtection != nil {
				r.Use(cfg.LoginProtection.Middleware())
			}
			r.Get(RouteLogin, authHandler.LoginForm)
			r.Post(RouteLogin, authHandler.Login)
			r.Get(RouteRegistration, authHandler.RegistrationForm)
			r.Post(RouteRegistration, authHandler.Register)
		})
		r.Post(RouteLogout, authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)

			r.Get(RoutePostCreate, posts.NewForm)
			r.Post(RoutePostCreate, posts.Create)
			r.Get(RoutePostEdit, posts.EditForm)
			r.Post(RoutePostEdit, posts.Update)
			r.Get(RoutePostDelete, posts.DeleteConfirm)
			r.Post(RoutePostDelete, posts.Delete)

			r.Post(RouteCommentCreate, comments.Create)
			for _, route := range []string{RouteCommentEdit, RouteCommentEditLegacy} {
				r.Get(route, comments.EditForm)
				r.Post(route, comments.Update)
			}
			for _, route := range []string{RouteCommentDelete, RouteCommentDeleteLegacy} {
				r.Get(route, comments.DeleteConfirm)
				r.Post(route, comments.Delete)
			}

			r.Get(RouteProfileEdit, profiles.EditForm)
			r.Post(RouteProfileEdit, profiles.Update)
		})
	})

	slog.Debug("router initialized", "posts_per_page", cfg.PostsPerPage)
	return r
}
