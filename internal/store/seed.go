// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// defaultCategories are created on first start when seeding is enabled.
var defaultCategories = []CreateCategoryParams{
	{Title: "Travel", Description: "Trips, routes and places worth a detour.", Slug: "travel", IsPublished: true},
	{Title: "Everyday life", Description: "Notes about ordinary days.", Slug: "everyday", IsPublished: true},
	{Title: "Drafts", Description: "Work in progress, hidden from readers.", Slug: "drafts", IsPublished: false},
}

// defaultLocations are created on first start when seeding is enabled.
var defaultLocations = []string{"Island of Joy", "Mountain Pass", "Old Town"}

// Seed creates the default categories and locations in an empty database.
// It is a no-op when enabled is false or any category already exists.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	queries := New(db)
	existing, err := queries.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("checking categories: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("categories already exist, skipping seed")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := queries.WithTx(tx)
	now := time.Now()

	for _, c := range defaultCategories {
		c.CreatedAt = now
		if _, err := qtx.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("creating category %q: %w", c.Slug, err)
		}
	}
	for _, name := range defaultLocations {
		if _, err := qtx.CreateLocation(ctx, CreateLocationParams{Name: name, IsPublished: true, CreatedAt: now}); err != nil {
			return fmt.Errorf("creating location %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	slog.Info("seeded default taxonomy",
		"categories", len(defaultCategories),
		"locations", len(defaultLocations),
	)
	return nil
}
