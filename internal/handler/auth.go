// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blogicum/internal/auth"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/util"
)

// AuthHandler handles login, logout and registration.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	errs            *ErrorPages
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, errs *ErrorPages, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		errs:            errs,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// LoginData is passed to the login template.
type LoginData struct {
	Username string
	Next     string
	Error    string
}

// LoginForm handles GET /auth/login. Logged-in users go to next.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, util.LocalRedirect(next, RouteRoot), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, LoginData{Next: next})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, data LoginData) {
	renderPage(w, r, h.renderer, h.errs, TemplateLogin, render.TemplateData{Title: "Log in", Data: data})
}

const invalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")
	data := LoginData{Username: username, Next: next}

	if username == "" || password == "" {
		data.Error = "Username and password are required."
		h.renderLogin(w, r, data)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(username); locked {
			slog.Warn("login attempt on locked account", "username", username)
			data.Error = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining))
			h.renderLogin(w, r, data)
			return
		}
	}

	user, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		h.errs.InternalError(w, r, "database error during login", "error", err)
		return
	}

	valid := false
	if err == nil {
		valid, err = auth.CheckPassword(password, user.PasswordHash)
		if err != nil {
			slog.Error("password check error", "error", err, "user_id", user.ID)
		}
	}

	if !valid {
		slog.Warn("login failed", "username", username)
		data.Error = h.recordFailure(username)
		h.renderLogin(w, r, data)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(username)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		h.errs.InternalError(w, r, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, util.LocalRedirect(next, RouteRoot), http.StatusSeeOther)
}

// recordFailure counts a failed login and returns the message to show.
func (h *AuthHandler) recordFailure(username string) string {
	if h.loginProtection == nil {
		return invalidCredentials
	}
	if locked, d := h.loginProtection.RecordFailure(username); locked {
		return fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(d))
	}
	if remaining := h.loginProtection.RemainingAttempts(username); remaining > 0 && remaining <= 3 {
		return fmt.Sprintf("%s %d attempts remaining.", invalidCredentials, remaining)
	}
	return invalidCredentials
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	h.sessionManager.Remove(r.Context(), middleware.SessionKeyUserID)
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		h.errs.InternalError(w, r, "session renewal error", "error", err)
		return
	}

	if userID != 0 {
		slog.Info("user logged out", "user_id", userID)
	}
	flashSuccess(w, r, h.renderer, RouteRoot, "You have been logged out.")
}

// RegistrationData is passed to the registration template.
type RegistrationData struct {
	Form   RegistrationForm
	Errors FieldErrors
}

// RegistrationForm handles GET /auth/registration.
func (h *AuthHandler) RegistrationForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, h.errs, TemplateRegistration, render.TemplateData{
		Title: "Sign up",
		Data:  RegistrationData{},
	})
}

// Register handles POST /auth/registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := RegistrationForm{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Password1: r.FormValue("password1"),
		Password2: r.FormValue("password2"),
	}

	formErrs := FieldErrors{}
	if err := validateUsername(r.Context(), h.queries, formErrs, form.Username, 0); err != nil {
		h.errs.InternalError(w, r, "failed to validate registration", "error", err)
		return
	}
	if form.Password1 == "" {
		formErrs.Add("password1", "This field is required.")
	}
	if form.Password2 == "" {
		formErrs.Add("password2", "This field is required.")
	}
	if form.Password1 != "" && form.Password2 != "" {
		if form.Password1 != form.Password2 {
			formErrs.Add("password2", "The two password fields didn't match.")
		} else {
			for _, problem := range auth.PasswordProblems(form.Password1, form.Username) {
				formErrs.Add("password2", problem)
			}
		}
	}

	if formErrs.Any() {
		form.Password1, form.Password2 = "", ""
		renderPage(w, r, h.renderer, h.errs, TemplateRegistration, render.TemplateData{
			Title: "Sign up",
			Data:  RegistrationData{Form: form, Errors: formErrs},
		})
		return
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		h.errs.InternalError(w, r, "failed to hash password", "error", err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     form.Username,
		PasswordHash: hash,
		DateJoined:   time.Now(),
	})
	if err != nil {
		h.errs.InternalError(w, r, "failed to create user", "error", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	flashSuccess(w, r, h.renderer, RouteRoot, "Account created. You can log in now.")
}

// formatDuration formats a lockout duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
