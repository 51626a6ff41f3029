// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/olegiv/blogicum/internal/store"
)

// CategoryCache caches category rows by slug for the category listing.
type CategoryCache struct {
	typed   *TypedCache[store.Category]
	queries *store.Queries
}

// NewCategoryCache creates a CategoryCache over c.
func NewCategoryCache(c Cacher, queries *store.Queries, ttl time.Duration) *CategoryCache {
	return &CategoryCache{
		typed:   NewTypedCache[store.Category](c, ttl),
		queries: queries,
	}
}

func categoryKey(slug string) string {
	return "category:" + slug
}

// BySlug returns the category with slug, loading it from the database on
// a miss. A missing category yields sql.ErrNoRows and is not cached.
func (c *CategoryCache) BySlug(ctx context.Context, slug string) (store.Category, error) {
	return c.typed.GetOrSet(ctx, categoryKey(slug), func() (store.Category, error) {
		return c.queries.GetCategoryBySlug(ctx, slug)
	})
}

// Invalidate drops the cached entry for slug.
func (c *CategoryCache) Invalidate(ctx context.Context, slug string) error {
	return c.typed.Delete(ctx, categoryKey(slug))
}

// Published returns the category with slug if it exists and is published.
// The row comes from the cache but the publish flag is read from the
// database on every call, so unpublished and deleted categories are
// reported as sql.ErrNoRows at once. Stale entries are dropped.
func (c *CategoryCache) Published(ctx context.Context, slug string) (store.Category, error) {
	category, err := c.BySlug(ctx, slug)
	if err != nil {
		return store.Category{}, err
	}

	published, err := c.queries.CategoryIsPublished(ctx, category.ID, slug)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_ = c.Invalidate(ctx, slug)
		return store.Category{}, sql.ErrNoRows
	case err != nil:
		return store.Category{}, err
	case published != category.IsPublished:
		_ = c.Invalidate(ctx, slug)
		category.IsPublished = published
	}
	if !category.IsPublished {
		return store.Category{}, sql.ErrNoRows
	}
	return category, nil
}
