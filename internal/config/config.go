// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from BLOG_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"BLOG_DB_PATH" envDefault:"./data/blogicum.db"`
	ServerHost string `env:"BLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BLOG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BLOG_ENV" envDefault:"development"`
	LogLevel   string `env:"BLOG_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"BLOG_UPLOADS_DIR" envDefault:"./uploads"`
	SiteURL    string `env:"BLOG_SITE_URL"` // Public base URL for sitemap.xml, derived from requests when empty

	// Listing
	PostsPerPage int `env:"BLOG_POSTS_PER_PAGE" envDefault:"10"`

	// Cache configuration
	RedisURL     string `env:"BLOG_REDIS_URL"`                          // Optional Redis URL for the category cache
	CachePrefix  string `env:"BLOG_CACHE_PREFIX" envDefault:"blogicum:"` // Redis key prefix
	CacheTTL     int    `env:"BLOG_CACHE_TTL" envDefault:"60"`           // Cache TTL in seconds
	CacheMaxSize int    `env:"BLOG_CACHE_MAX_SIZE" envDefault:"1000"`    // Max memory cache entries

	// Orphaned upload sweep, cron syntax
	SweepSchedule string `env:"BLOG_SWEEP_SCHEDULE" envDefault:"@hourly"`

	// Seeding configuration
	DoSeed bool `env:"BLOG_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheDuration returns CacheTTL as a duration.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.PostsPerPage < 1 {
		return nil, fmt.Errorf("BLOG_POSTS_PER_PAGE must be positive, got %d", cfg.PostsPerPage)
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("BLOG_CACHE_TTL must not be negative, got %d", cfg.CacheTTL)
	}
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("BLOG_SERVER_PORT out of range: %d", cfg.ServerPort)
	}
	if cfg.Env != "development" && cfg.Env != "production" {
		slog.Warn("unknown BLOG_ENV, treating as production", "env", cfg.Env)
	}

	return cfg, nil
}
