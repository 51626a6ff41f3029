// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func TestEventLogHandler_RecordsErrors(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("failed to save post", "post_id", 7, "error", "disk full")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, LevelError, e.Level)
	assert.Equal(t, CategoryPost, e.Category)
	assert.Equal(t, "failed to save post", e.Message)

	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(e.Metadata), &meta))
	assert.Equal(t, "7", meta["post_id"])
	assert.Equal(t, "disk full", meta["error"])
}

func TestEventLogHandler_SkipsBelowLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Info("post created", "post_id", 1)
	logger.Debug("cache hit")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventLogHandler_ExplicitCategoryAndAttrs(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("request_id", "abc")

	logger.Warn("something odd", "category", CategoryCache)

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, LevelWarning, events[0].Level)
	assert.Equal(t, CategoryCache, events[0].Category)
	assert.JSONEq(t, `{"request_id":"abc"}`, events[0].Metadata)
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login failed", CategoryAuth},
		{"registration rejected", CategoryAuth},
		{"comment delete failed", CategoryComment},
		{"post update failed", CategoryPost},
		{"image decode failed", CategoryUpload},
		{"redis cache unavailable", CategoryCache},
		{"shutting down", CategorySystem},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, inferCategory(tt.msg))
		})
	}
}
