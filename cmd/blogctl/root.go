// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olegiv/blogicum/internal/cache"
	"github.com/olegiv/blogicum/internal/config"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/version"
)

// app is shared by all subcommands. The database is opened before a
// subcommand runs and closed after it.
type app struct {
	dbPath     string
	uploadsDir string
	db         *sql.DB
	queries    *store.Queries
	logger     *slog.Logger
	cacheCfg   cache.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Administer a Blogicum database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["db"] == "none" || cmd.Name() == "help" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default: BLOG_DB_PATH)")
	root.PersistentFlags().StringVar(&a.uploadsDir, "uploads", "", "uploads directory (default: BLOG_UPLOADS_DIR)")

	root.AddCommand(
		newMigrateCommand(a),
		newSeedCommand(a),
		newCategoryCommand(a),
		newLocationCommand(a),
		newUserCommand(a),
		newMaintenanceCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.dbPath == "" {
		a.dbPath = cfg.DBPath
	}
	if a.uploadsDir == "" {
		a.uploadsDir = cfg.UploadsDir
	}

	a.cacheCfg = cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheDuration(),
	}

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(a.logger)

	if err := os.MkdirAll(filepath.Dir(a.dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewDB(a.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	a.db = db
	a.queries = store.New(db)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// invalidateCategory drops slug from the shared Redis cache used by the
// server. Without BLOG_REDIS_URL there is nothing shared to clear.
func (a *app) invalidateCategory(ctx context.Context, slug string) {
	if a.cacheCfg.RedisURL == "" {
		return
	}
	cacher, backend := cache.NewCache(a.cacheCfg, a.logger)
	defer func() { _ = cacher.Close() }()
	if backend != cache.BackendRedis {
		return
	}
	categories := cache.NewCategoryCache(cacher, a.queries, a.cacheCfg.DefaultTTL)
	if err := categories.Invalidate(ctx, slug); err != nil {
		a.logger.Warn("failed to invalidate cached category", "slug", slug, "error", err)
		return
	}
	a.logger.Debug("cached category invalidated", "slug", slug)
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Migrations already ran while opening the database.
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", a.dbPath)
			return nil
		},
	}
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories and locations in an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return store.Seed(cmd.Context(), a.db, true)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"db": "none"},
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), info.Banner("blogctl"))
		},
	}
}
