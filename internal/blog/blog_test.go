// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/olegiv/blogicum/internal/store"
)

func postRow(published bool, pubDate time.Time, category *bool) store.PostRow {
	p := store.PostRow{}
	p.ID = 1
	p.AuthorID = 10
	p.IsPublished = published
	p.PubDate = pubDate
	if category != nil {
		p.CategoryID = sql.NullInt64{Int64: 3, Valid: true}
		p.CategoryIsPublished = sql.NullBool{Bool: *category, Valid: true}
	}
	return p
}

func TestIsPublic(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	yes, no := true, false

	tests := []struct {
		name string
		post store.PostRow
		want bool
	}{
		{"published in published category", postRow(true, now.Add(-time.Hour), &yes), true},
		{"published without category", postRow(true, now.Add(-time.Hour), nil), true},
		{"publication date equal to now", postRow(true, now, &yes), true},
		{"unpublished", postRow(false, now.Add(-time.Hour), &yes), false},
		{"scheduled for the future", postRow(true, now.Add(time.Minute), &yes), false},
		{"category unpublished", postRow(true, now.Add(-time.Hour), &no), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPublic(tt.post, now); got != tt.want {
				t.Errorf("IsPublic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanView(t *testing.T) {
	now := time.Now()
	draft := postRow(false, now.Add(time.Hour), nil)

	if !CanView(draft, draft.AuthorID, now) {
		t.Error("author should see their own draft")
	}
	if CanView(draft, draft.AuthorID+1, now) {
		t.Error("other users must not see a draft")
	}
	if CanView(draft, 0, now) {
		t.Error("anonymous users must not see a draft")
	}

	public := postRow(true, now.Add(-time.Hour), nil)
	if !CanView(public, 0, now) {
		t.Error("anonymous users should see a public post")
	}
}

func TestRequireAuthor(t *testing.T) {
	tests := []struct {
		author, viewer int64
		want           error
	}{
		{1, 1, nil},
		{1, 2, ErrForbidden},
		{1, 0, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("author=%d viewer=%d", tt.author, tt.viewer), func(t *testing.T) {
			if err := RequireAuthor(tt.author, tt.viewer); !errors.Is(err, tt.want) {
				t.Errorf("RequireAuthor() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	if !errors.Is(Lookup(sql.ErrNoRows), ErrNotFound) {
		t.Error("sql.ErrNoRows should map to ErrNotFound")
	}
	wrapped := fmt.Errorf("get post: %w", sql.ErrNoRows)
	if !errors.Is(Lookup(wrapped), ErrNotFound) {
		t.Error("wrapped sql.ErrNoRows should map to ErrNotFound")
	}
	other := errors.New("disk full")
	if !errors.Is(Lookup(other), other) {
		t.Error("other errors should pass through")
	}
	if Lookup(nil) != nil {
		t.Error("nil should stay nil")
	}
}
