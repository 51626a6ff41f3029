// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"strings"
	"time"
)

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	DateJoined   time.Time
}

// FullName returns "First Last", or the username when both are empty.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Category groups posts under a URL slug.
type Category struct {
	ID          int64
	Title       string
	Description string
	Slug        string
	IsPublished bool
	CreatedAt   time.Time
}

// Location is an optional place attached to a post.
type Location struct {
	ID          int64
	Name        string
	IsPublished bool
	CreatedAt   time.Time
}

// Post is a blog entry.
type Post struct {
	ID          int64
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	CreatedAt   time.Time
	AuthorID    int64
	LocationID  sql.NullInt64
	CategoryID  sql.NullInt64
	Image       string
}

// PostRow is a post joined with its author, category, location and
// comment count, as used by listings and the detail page.
type PostRow struct {
	Post
	AuthorUsername      string
	CategoryTitle       sql.NullString
	CategorySlug        sql.NullString
	CategoryIsPublished sql.NullBool
	LocationName        sql.NullString
	LocationIsPublished sql.NullBool
	CommentCount        int64
}

// HasCategory reports whether the post still references a category.
func (p PostRow) HasCategory() bool {
	return p.CategoryID.Valid
}

// ShowLocation reports whether the post's location should be displayed.
func (p PostRow) ShowLocation() bool {
	return p.LocationID.Valid && p.LocationIsPublished.Valid && p.LocationIsPublished.Bool
}

// Comment is a reader comment on a post.
type Comment struct {
	ID        int64
	Text      string
	PostID    int64
	AuthorID  int64
	CreatedAt time.Time
}

// CommentRow is a comment joined with its author's username.
type CommentRow struct {
	Comment
	AuthorUsername string
}

// Event is an audit log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
