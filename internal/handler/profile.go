// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/store"
)

// ProfileHandler handles profile pages.
type ProfileHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	errs     *ErrorPages
	perPage  int
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *sql.DB, renderer *render.Renderer, errs *ErrorPages, perPage int) *ProfileHandler {
	return &ProfileHandler{
		queries:  store.New(db),
		renderer: renderer,
		errs:     errs,
		perPage:  perPage,
	}
}

// ProfilePageData is passed to the profile template.
type ProfilePageData struct {
	Profile store.User
	IsOwner bool
	PostList
}

// Show handles GET /profile/{username}. The owner sees all of their posts,
// everyone else only the public ones.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		h.errs.FromError(w, r, blog.Lookup(err), "failed to load profile", "username", username)
		return
	}

	viewerID := middleware.GetUserID(r)
	filter := blog.ProfileFilter(profile.ID, viewerID, time.Now())
	list, err := listPosts(r.Context(), h.queries, filter, r.URL.Query().Get("page"), h.perPage, profileURL(profile.Username))
	if err != nil {
		h.errs.InternalError(w, r, "failed to list profile posts", "error", err, "user_id", profile.ID)
		return
	}

	renderPage(w, r, h.renderer, h.errs, TemplateProfile, render.TemplateData{
		Title: profile.FullName(),
		Data: ProfilePageData{
			Profile:  profile,
			IsOwner:  viewerID != 0 && viewerID == profile.ID,
			PostList: list,
		},
	})
}

// ProfileFormData is passed to the profile form template.
type ProfileFormData struct {
	Profile store.User
	Form    ProfileForm
	Errors  FieldErrors
}

// loadOwnProfile resolves the profile for editing. Unknown users are 404,
// other accounts 403.
func (h *ProfileHandler) loadOwnProfile(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	username := chi.URLParam(r, "username")

	profile, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		h.errs.FromError(w, r, blog.Lookup(err), "failed to load profile", "username", username)
		return profile, false
	}
	if err := blog.RequireAuthor(profile.ID, middleware.GetUserID(r)); err != nil {
		slog.Warn("profile edit refused", "profile_id", profile.ID, "user_id", middleware.GetUserID(r))
		h.errs.Forbidden(w, r)
		return profile, false
	}
	return profile, true
}

// EditForm handles GET /profile/{username}/edit.
func (h *ProfileHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadOwnProfile(w, r)
	if !ok {
		return
	}
	renderPage(w, r, h.renderer, h.errs, TemplateProfileForm, render.TemplateData{
		Title: "Edit profile",
		Data:  ProfileFormData{Profile: profile, Form: profileFormFromUser(profile)},
	})
}

// Update handles POST /profile/{username}/edit.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadOwnProfile(w, r)
	if !ok {
		return
	}

	form := parseProfileForm(r)
	formErrs, err := form.validate(r.Context(), h.queries, profile.ID)
	if err != nil {
		h.errs.InternalError(w, r, "failed to validate profile", "error", err, "user_id", profile.ID)
		return
	}
	if formErrs.Any() {
		renderPage(w, r, h.renderer, h.errs, TemplateProfileForm, render.TemplateData{
			Title: "Edit profile",
			Data:  ProfileFormData{Profile: profile, Form: form, Errors: formErrs},
		})
		return
	}

	updated, err := h.queries.UpdateUserProfile(r.Context(), store.UpdateUserProfileParams{
		ID:        profile.ID,
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
	if err != nil {
		h.errs.InternalError(w, r, "failed to update profile", "error", err, "user_id", profile.ID)
		return
	}

	slog.Info("profile updated", "user_id", updated.ID)
	flashSuccess(w, r, h.renderer, profileURL(updated.Username), "Profile updated.")
}
