// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package blog holds the visibility and authorship rules shared by the
// HTTP handlers.
package blog

import (
	"database/sql"
	"errors"
	"time"

	"github.com/olegiv/blogicum/internal/store"
)

var (
	// ErrNotFound means the record does not exist or is not visible to the viewer.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the viewer is not the record's author.
	ErrForbidden = errors.New("forbidden")
)

// Lookup maps sql.ErrNoRows to ErrNotFound and passes other errors through.
func Lookup(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsPublic reports whether p is visible to everyone at now.
func IsPublic(p store.PostRow, now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	if p.HasCategory() && !(p.CategoryIsPublished.Valid && p.CategoryIsPublished.Bool) {
		return false
	}
	return true
}

// CanView reports whether the viewer may open the detail page of p.
// Authors always see their own posts. viewerID is 0 for anonymous users.
func CanView(p store.PostRow, viewerID int64, now time.Time) bool {
	if viewerID != 0 && p.AuthorID == viewerID {
		return true
	}
	return IsPublic(p, now)
}

// ProfileFilter returns the listing filter for a profile page. The owner
// sees every post, other viewers only public ones.
func ProfileFilter(ownerID, viewerID int64, now time.Time) store.PostFilter {
	if viewerID != 0 && ownerID == viewerID {
		return store.PostFilter{}.ByAuthor(ownerID)
	}
	return store.PublicPosts(now).ByAuthor(ownerID)
}

// RequireAuthor returns ErrForbidden unless viewerID is authorID.
func RequireAuthor(authorID, viewerID int64) error {
	if viewerID == 0 || authorID != viewerID {
		return ErrForbidden
	}
	return nil
}
