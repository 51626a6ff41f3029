// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/olegiv/blogicum/internal/cache"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db         *sql.DB
	uploadsDir string
	cacheName  string
	cache      cache.Cacher
	startTime  time.Time
}

// NewHealthHandler creates a new health handler. cacheName is reported as
// the active cache backend; c, when not nil, supplies its counters.
func NewHealthHandler(db *sql.DB, uploadsDir, cacheName string, c cache.Cacher) *HealthHandler {
	return &HealthHandler{
		db:         db,
		uploadsDir: uploadsDir,
		cacheName:  cacheName,
		cache:      c,
		startTime:  time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status     string           `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
	Uptime     string           `json:"uptime"`
	Cache      string           `json:"cache,omitempty"`
	CacheStats *cache.Stats     `json:"cache_stats,omitempty"`
	Checks     map[string]Check `json:"checks"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. It answers 503 when a check fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.checkDatabase(r.Context()),
		"uploads":  h.checkUploads(),
	}

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Cache:     h.cacheName,
		Checks:    checks,
	}
	if h.cache != nil {
		stats := h.cache.Stats()
		status.CacheStats = &stats
	}
	for _, c := range checks {
		if c.Status != "healthy" {
			status.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if status.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		return Check{Status: "unhealthy", Message: "database unreachable"}
	}
	return Check{Status: "healthy", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkUploads() Check {
	info, err := os.Stat(h.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Check{Status: "healthy", Message: "uploads directory not created yet"}
		}
		return Check{Status: "unhealthy", Message: "uploads directory not accessible"}
	}
	if !info.IsDir() {
		return Check{Status: "unhealthy", Message: "uploads path is not a directory"}
	}
	return Check{Status: "healthy"}
}
