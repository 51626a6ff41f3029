// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const commentColumns = `id, text, post_id, author_id, created_at`

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.CreatedAt)
	return c, err
}

// CreateCommentParams holds the fields for a new comment.
type CreateCommentParams struct {
	Text      string
	PostID    int64
	AuthorID  int64
	CreatedAt time.Time
}

// CreateComment inserts a comment.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO comments (text, post_id, author_id, created_at)
		VALUES (?, ?, ?, ?)`,
		arg.Text, arg.PostID, arg.AuthorID, dbTime(arg.CreatedAt),
	)
	if err != nil {
		return Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Comment{}, err
	}
	return q.GetCommentByID(ctx, id)
}

// GetCommentByID returns a comment.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (Comment, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	return scanComment(row)
}

// ListCommentsForPost returns a post's comments, oldest first.
func (q *Queries) ListCommentsForPost(ctx context.Context, postID int64) ([]CommentRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT cm.id, cm.text, cm.post_id, cm.author_id, cm.created_at, u.username
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = ?
		ORDER BY cm.created_at ASC, cm.id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []CommentRow
	for rows.Next() {
		var c CommentRow
		if err := rows.Scan(&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.CreatedAt, &c.AuthorUsername); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// UpdateCommentText changes the text of a comment. Author, post and
// creation time never change.
func (q *Queries) UpdateCommentText(ctx context.Context, id int64, text string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE comments SET text = ? WHERE id = ?`, text, id)
	return err
}

// DeleteComment removes a comment.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}
