// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/testutil"
)

func TestCategoryCache_BySlug(t *testing.T) {
	db := testutil.TestDB(t)
	cat := testutil.CreateCategory(t, db, "travel", true)
	q := store.New(db)

	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	cc := NewCategoryCache(mc, q, time.Minute)
	ctx := context.Background()

	got, err := cc.BySlug(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)
	assert.True(t, got.IsPublished)

	// Served from cache until invalidated.
	require.NoError(t, q.SetCategoryPublished(ctx, cat.ID, false))
	got, err = cc.BySlug(ctx, "travel")
	require.NoError(t, err)
	assert.True(t, got.IsPublished)

	require.NoError(t, cc.Invalidate(ctx, "travel"))
	got, err = cc.BySlug(ctx, "travel")
	require.NoError(t, err)
	assert.False(t, got.IsPublished)
	assert.Equal(t, int64(1), mc.Stats().Hits)
}

func TestCategoryCache_MissingSlug(t *testing.T) {
	db := testutil.TestDB(t)
	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	cc := NewCategoryCache(mc, store.New(db), time.Minute)

	_, err := cc.BySlug(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows), "err = %v", err)

	// Created later, found without invalidation since misses are not cached.
	testutil.CreateCategory(t, db, "nope", true)
	_, err = cc.BySlug(context.Background(), "nope")
	assert.NoError(t, err)
}

func TestCategoryCache_Published(t *testing.T) {
	db := testutil.TestDB(t)
	cat := testutil.CreateCategory(t, db, "travel", true)
	testutil.CreateCategory(t, db, "hidden", false)
	q := store.New(db)

	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()
	cc := NewCategoryCache(mc, q, time.Minute)
	ctx := context.Background()

	got, err := cc.Published(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)

	_, err = cc.Published(ctx, "hidden")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = cc.Published(ctx, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Unpublishing takes effect while the row is still cached.
	require.NoError(t, q.SetCategoryPublished(ctx, cat.ID, false))
	_, err = cc.Published(ctx, "travel")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, q.SetCategoryPublished(ctx, cat.ID, true))
	_, err = cc.Published(ctx, "travel")
	require.NoError(t, err)

	require.NoError(t, q.DeleteCategory(ctx, cat.ID))
	_, err = cc.Published(ctx, "travel")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = mc.Get(ctx, categoryKey("travel"))
	assert.ErrorIs(t, err, ErrCacheMiss, "stale entry should be dropped")
}
