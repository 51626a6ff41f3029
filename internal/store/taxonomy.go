// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// =============================================================================
// CATEGORIES
// =============================================================================

const categoryColumns = `id, title, description, slug, is_published, created_at`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished, &c.CreatedAt)
	return c, err
}

// CreateCategoryParams holds the fields for a new category.
type CreateCategoryParams struct {
	Title       string
	Description string
	Slug        string
	IsPublished bool
	CreatedAt   time.Time
}

// CreateCategory inserts a category.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (title, description, slug, is_published, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		arg.Title, arg.Description, arg.Slug, arg.IsPublished, dbTime(arg.CreatedAt),
	)
	if err != nil {
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	return q.GetCategoryByID(ctx, id)
}

// GetCategoryByID returns a category regardless of its publish state.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// GetCategoryBySlug returns a category regardless of its publish state.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	return scanCategory(row)
}

// CategoryIsPublished reports the current publish flag of category id
// while it still has slug. It returns sql.ErrNoRows when the category was
// deleted or its slug changed.
func (q *Queries) CategoryIsPublished(ctx context.Context, id int64, slug string) (bool, error) {
	var published bool
	err := q.db.QueryRowContext(ctx,
		`SELECT is_published FROM categories WHERE id = ? AND slug = ?`, id, slug).Scan(&published)
	return published, err
}

// CategorySlugExists counts categories using slug.
func (q *Queries) CategorySlugExists(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

// ListCategories returns all categories ordered by title.
func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	return q.listCategories(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY title, id`)
}

// ListPublishedCategories returns the categories offered in the post form.
func (q *Queries) ListPublishedCategories(ctx context.Context) ([]Category, error) {
	return q.listCategories(ctx, `SELECT `+categoryColumns+` FROM categories WHERE is_published = 1 ORDER BY title, id`)
}

func (q *Queries) listCategories(ctx context.Context, query string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// SetCategoryPublished toggles the publish flag of a category.
func (q *Queries) SetCategoryPublished(ctx context.Context, id int64, published bool) error {
	_, err := q.db.ExecContext(ctx, `UPDATE categories SET is_published = ? WHERE id = ?`, published, id)
	return err
}

// DeleteCategory removes a category. Posts keep existing with no category.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

// =============================================================================
// LOCATIONS
// =============================================================================

const locationColumns = `id, name, is_published, created_at`

func scanLocation(row interface{ Scan(...any) error }) (Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt)
	return l, err
}

// CreateLocationParams holds the fields for a new location.
type CreateLocationParams struct {
	Name        string
	IsPublished bool
	CreatedAt   time.Time
}

// CreateLocation inserts a location.
func (q *Queries) CreateLocation(ctx context.Context, arg CreateLocationParams) (Location, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO locations (name, is_published, created_at)
		VALUES (?, ?, ?)`,
		arg.Name, arg.IsPublished, dbTime(arg.CreatedAt),
	)
	if err != nil {
		return Location{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Location{}, err
	}
	return q.GetLocationByID(ctx, id)
}

// GetLocationByID returns a location regardless of its publish state.
func (q *Queries) GetLocationByID(ctx context.Context, id int64) (Location, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	return scanLocation(row)
}

// ListLocations returns all locations ordered by name.
func (q *Queries) ListLocations(ctx context.Context) ([]Location, error) {
	return q.listLocations(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name, id`)
}

// ListPublishedLocations returns the locations offered in the post form.
func (q *Queries) ListPublishedLocations(ctx context.Context) ([]Location, error) {
	return q.listLocations(ctx, `SELECT `+locationColumns+` FROM locations WHERE is_published = 1 ORDER BY name, id`)
}

func (q *Queries) listLocations(ctx context.Context, query string) ([]Location, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// SetLocationPublished toggles the publish flag of a location.
func (q *Queries) SetLocationPublished(ctx context.Context, id int64, published bool) error {
	_, err := q.db.ExecContext(ctx, `UPDATE locations SET is_published = ? WHERE id = ?`, published, id)
	return err
}

// DeleteLocation removes a location. Posts keep existing with no location.
func (q *Queries) DeleteLocation(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	return err
}
