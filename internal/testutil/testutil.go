// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/blogicum/internal/auth"
	"github.com/olegiv/blogicum/internal/store"
)

// TestPassword is the password of users created by CreateUser.
const TestPassword = "s3cret-pass"

// TestLogger creates a quiet test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary on-disk database with migrations applied.
// It is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "blogicum-test.db")

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with TestPassword.
func CreateUser(t *testing.T, db *sql.DB, username string) store.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		DateJoined:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return user
}

// CreateCategory inserts a category.
func CreateCategory(t *testing.T, db *sql.DB, slug string, published bool) store.Category {
	t.Helper()

	c, err := store.New(db).CreateCategory(context.Background(), store.CreateCategoryParams{
		Title:       "Category " + slug,
		Description: "Posts about " + slug,
		Slug:        slug,
		IsPublished: published,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", slug, err)
	}
	return c
}

// CreateLocation inserts a location.
func CreateLocation(t *testing.T, db *sql.DB, name string, published bool) store.Location {
	t.Helper()

	l, err := store.New(db).CreateLocation(context.Background(), store.CreateLocationParams{
		Name:        name,
		IsPublished: published,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateLocation(%s): %v", name, err)
	}
	return l
}

// CountComments returns the number of comments on postID.
func CountComments(t *testing.T, db *sql.DB, postID int64) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n); err != nil {
		t.Fatalf("CountComments(%d): %v", postID, err)
	}
	return n
}

// CreatePost inserts a post and returns it with its relations.
func CreatePost(t *testing.T, db *sql.DB, arg store.CreatePostParams) store.PostRow {
	t.Helper()

	if arg.Text == "" {
		arg.Text = "Some text."
	}
	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = time.Now()
	}
	q := store.New(db)
	id, err := q.CreatePost(context.Background(), arg)
	if err != nil {
		t.Fatalf("CreatePost(%s): %v", arg.Title, err)
	}
	p, err := q.GetPostByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPostByID(%d): %v", id, err)
	}
	return p
}
