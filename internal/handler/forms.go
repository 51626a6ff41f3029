// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/blogicum/internal/auth"
	"github.com/olegiv/blogicum/internal/store"
)

// Field length limits.
const (
	MaxTitleLength    = 256
	MaxUsernameLength = auth.MaxUsernameLength
	MaxNameLength     = 150
)

// PubDateLayout is the format of <input type="datetime-local">.
const PubDateLayout = "2006-01-02T15:04"

// FieldErrors maps form field names to validation messages. The empty
// key holds errors that belong to no single field.
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Get returns the messages for field.
func (fe FieldErrors) Get(field string) []string {
	return fe[field]
}

// Has reports whether field has any messages.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Any reports whether there are messages at all.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

func requireText(errs FieldErrors, field, value string, maxLen int) {
	switch {
	case strings.TrimSpace(value) == "":
		errs.Add(field, "This field is required.")
	case maxLen > 0 && utf8.RuneCountInString(value) > maxLen:
		errs.Add(field, fmt.Sprintf("Ensure this value has at most %d characters.", maxLen))
	}
}

func parseOptionalID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// PostForm holds the submitted post fields.
type PostForm struct {
	Title       string
	Text        string
	PubDate     string
	LocationID  int64
	CategoryID  int64
	IsPublished bool
	// Image is the stored image path of the post being edited.
	Image      string
	ClearImage bool
}

func postFormFromPost(p store.Post) PostForm {
	f := PostForm{
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     p.PubDate.Local().Format(PubDateLayout),
		IsPublished: p.IsPublished,
		Image:       p.Image,
	}
	if p.LocationID.Valid {
		f.LocationID = p.LocationID.Int64
	}
	if p.CategoryID.Valid {
		f.CategoryID = p.CategoryID.Int64
	}
	return f
}

func newPostForm(now time.Time) PostForm {
	return PostForm{PubDate: now.Local().Format(PubDateLayout), IsPublished: true}
}

func parsePostForm(r *http.Request, current string) PostForm {
	return PostForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Text:        r.FormValue("text"),
		PubDate:     strings.TrimSpace(r.FormValue("pub_date")),
		LocationID:  parseOptionalID(r.FormValue("location")),
		CategoryID:  parseOptionalID(r.FormValue("category")),
		IsPublished: r.FormValue("is_published") != "",
		Image:       current,
		ClearImage:  r.FormValue("image_clear") != "",
	}
}

// validate checks the fields and returns the parsed publication date.
// Category and location must reference published records.
func (f PostForm) validate(ctx context.Context, queries *store.Queries) (time.Time, FieldErrors, error) {
	errs := FieldErrors{}
	requireText(errs, "title", f.Title, MaxTitleLength)
	requireText(errs, "text", f.Text, 0)

	var pubDate time.Time
	if f.PubDate == "" {
		errs.Add("pub_date", "This field is required.")
	} else {
		t, err := time.ParseInLocation(PubDateLayout, f.PubDate, time.Local)
		if err != nil {
			errs.Add("pub_date", "Enter a valid date/time.")
		}
		pubDate = t
	}

	if f.CategoryID == 0 {
		errs.Add("category", "This field is required.")
	} else {
		c, err := queries.GetCategoryByID(ctx, f.CategoryID)
		switch {
		case errors.Is(err, sql.ErrNoRows) || (err == nil && !c.IsPublished):
			errs.Add("category", "Select a valid choice.")
		case err != nil:
			return pubDate, nil, fmt.Errorf("loading category: %w", err)
		}
	}

	if f.LocationID != 0 {
		l, err := queries.GetLocationByID(ctx, f.LocationID)
		switch {
		case errors.Is(err, sql.ErrNoRows) || (err == nil && !l.IsPublished):
			errs.Add("location", "Select a valid choice.")
		case err != nil:
			return pubDate, nil, fmt.Errorf("loading location: %w", err)
		}
	}

	return pubDate, errs, nil
}

// CommentForm holds the submitted comment text.
type CommentForm struct {
	Text string
}

func (f CommentForm) validate() FieldErrors {
	errs := FieldErrors{}
	requireText(errs, "text", f.Text, 0)
	return errs
}

// ProfileForm holds the editable account fields.
type ProfileForm struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

func profileFormFromUser(u store.User) ProfileForm {
	return ProfileForm{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

func parseProfileForm(r *http.Request) ProfileForm {
	return ProfileForm{
		Username:  strings.TrimSpace(r.FormValue("username")),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
	}
}

func (f ProfileForm) validate(ctx context.Context, queries *store.Queries, userID int64) (FieldErrors, error) {
	errs := FieldErrors{}
	if err := validateUsername(ctx, queries, errs, f.Username, userID); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(f.FirstName) > MaxNameLength {
		errs.Add("first_name", fmt.Sprintf("Ensure this value has at most %d characters.", MaxNameLength))
	}
	if utf8.RuneCountInString(f.LastName) > MaxNameLength {
		errs.Add("last_name", fmt.Sprintf("Ensure this value has at most %d characters.", MaxNameLength))
	}
	if f.Email != "" && !isValidEmail(f.Email) {
		errs.Add("email", "Enter a valid email address.")
	}
	return errs, nil
}

// RegistrationForm holds the sign-up fields.
type RegistrationForm struct {
	Username  string
	Password1 string
	Password2 string
}

// validateUsername checks format and uniqueness. excludeID is the account
// being edited, or 0 for a new one.
func validateUsername(ctx context.Context, queries *store.Queries, errs FieldErrors, username string, excludeID int64) error {
	requireText(errs, "username", username, MaxUsernameLength)
	if errs.Has("username") {
		return nil
	}
	if !auth.ValidUsername(username) {
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		return nil
	}

	exists, err := queries.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return fmt.Errorf("checking username: %w", err)
	}
	if exists != 0 {
		errs.Add("username", "A user with that username already exists.")
	}
	return nil
}

func isValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
