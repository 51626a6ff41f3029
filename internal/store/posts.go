// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"slices"
	"strings"
	"time"
)

const postRowSelect = `
	SELECT p.id, p.title, p.text, p.pub_date, p.is_published, p.created_at,
	       p.author_id, p.location_id, p.category_id, p.image,
	       u.username,
	       c.title, c.slug, c.is_published,
	       l.name, l.is_published,
	       (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS comment_count
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id`

func scanPostRow(row interface{ Scan(...any) error }) (PostRow, error) {
	var p PostRow
	err := row.Scan(
		&p.ID, &p.Title, &p.Text, &p.PubDate, &p.IsPublished, &p.CreatedAt,
		&p.AuthorID, &p.LocationID, &p.CategoryID, &p.Image,
		&p.AuthorUsername,
		&p.CategoryTitle, &p.CategorySlug, &p.CategoryIsPublished,
		&p.LocationName, &p.LocationIsPublished,
		&p.CommentCount,
	)
	return p, err
}

// PostFilter restricts which posts a listing returns. The zero value
// matches every post; narrow it with the constructors and methods below.
type PostFilter struct {
	conds []string
	args  []any
}

// PublicPosts matches posts visible to everyone at now: published, with a
// publication date not in the future, and either uncategorised or in a
// published category.
func PublicPosts(now time.Time) PostFilter {
	return PostFilter{}.
		where("p.is_published = 1").
		where("p.pub_date <= ?", dbTime(now)).
		where("(p.category_id IS NULL OR c.is_published = 1)")
}

// InCategory narrows f to posts of one category.
func (f PostFilter) InCategory(categoryID int64) PostFilter {
	return f.where("p.category_id = ?", categoryID)
}

// ByAuthor narrows f to posts written by one user.
func (f PostFilter) ByAuthor(authorID int64) PostFilter {
	return f.where("p.author_id = ?", authorID)
}

func (f PostFilter) where(cond string, args ...any) PostFilter {
	return PostFilter{
		conds: append(slices.Clone(f.conds), cond),
		args:  append(slices.Clone(f.args), args...),
	}
}

func (f PostFilter) clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// ListPosts returns one page of posts matching f, newest publication first.
func (q *Queries) ListPosts(ctx context.Context, f PostFilter, limit, offset int) ([]PostRow, error) {
	query := postRowSelect + f.clause() + ` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`
	args := append(slices.Clone(f.args), limit, offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []PostRow
	for rows.Next() {
		p, err := scanPostRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CountPosts counts posts matching f.
func (q *Queries) CountPosts(ctx context.Context, f PostFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM posts p LEFT JOIN categories c ON c.id = p.category_id` + f.clause()
	var n int64
	err := q.db.QueryRowContext(ctx, query, f.args...).Scan(&n)
	return n, err
}

// GetPostByID returns a post with its relations, whatever its visibility.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (PostRow, error) {
	row := q.db.QueryRowContext(ctx, postRowSelect+` WHERE p.id = ?`, id)
	return scanPostRow(row)
}

// CreatePostParams holds the fields for a new post. Zero LocationID or
// CategoryID means none.
type CreatePostParams struct {
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	AuthorID    int64
	LocationID  int64
	CategoryID  int64
	Image       string
	CreatedAt   time.Time
}

// CreatePost inserts a post and returns its ID.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO posts (title, text, pub_date, is_published, created_at, author_id, location_id, category_id, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Text, dbTime(arg.PubDate), arg.IsPublished, dbTime(arg.CreatedAt),
		arg.AuthorID, nullInt64(arg.LocationID), nullInt64(arg.CategoryID), arg.Image,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdatePostParams holds the editable fields of a post. The author and
// creation time are not editable.
type UpdatePostParams struct {
	ID          int64
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	LocationID  int64
	CategoryID  int64
	Image       string
}

// UpdatePost overwrites the editable fields of a post.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, text = ?, pub_date = ?, is_published = ?, location_id = ?, category_id = ?, image = ?
		WHERE id = ?`,
		arg.Title, arg.Text, dbTime(arg.PubDate), arg.IsPublished,
		nullInt64(arg.LocationID), nullInt64(arg.CategoryID), arg.Image, arg.ID,
	)
	return err
}

// DeletePost removes a post and, through the foreign key, its comments.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// ListPostImages returns every image path referenced by a post.
func (q *Queries) ListPostImages(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT image FROM posts WHERE image != ''`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var images []string
	for rows.Next() {
		var img string
		if err := rows.Scan(&img); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
