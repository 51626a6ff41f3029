// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance: removing post images no
// longer referenced by any post and pruning the audit log.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/store"
)

// Defaults for Options.
const (
	DefaultSweepSchedule  = "@hourly"
	DefaultPruneSchedule  = "@daily"
	DefaultOrphanGrace    = 30 * time.Minute
	DefaultEventRetention = 90 * 24 * time.Hour
)

// Options configures the maintenance jobs. Zero values mean the defaults.
type Options struct {
	SweepSchedule  string
	PruneSchedule  string
	OrphanGrace    time.Duration // uploads younger than this are never swept
	EventRetention time.Duration
}

func (o Options) withDefaults() Options {
	if o.SweepSchedule == "" {
		o.SweepSchedule = DefaultSweepSchedule
	}
	if o.PruneSchedule == "" {
		o.PruneSchedule = DefaultPruneSchedule
	}
	if o.OrphanGrace <= 0 {
		o.OrphanGrace = DefaultOrphanGrace
	}
	if o.EventRetention <= 0 {
		o.EventRetention = DefaultEventRetention
	}
	return o
}

// Scheduler runs the maintenance jobs on cron schedules.
type Scheduler struct {
	db        *sql.DB
	processor *imaging.Processor
	cron      *cron.Cron
	logger    *slog.Logger
	opts      Options
}

// New creates a new scheduler instance.
func New(db *sql.DB, processor *imaging.Processor, logger *slog.Logger, opts Options) *Scheduler {
	return &Scheduler{
		db:        db,
		processor: processor,
		cron:      cron.New(),
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.SweepSchedule, func() {
		if _, err := s.SweepImages(context.Background()); err != nil {
			s.logger.Error("failed to sweep orphaned images", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling image sweep %q: %w", s.opts.SweepSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.opts.PruneSchedule, func() {
		if _, err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("failed to prune events", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling event pruning %q: %w", s.opts.PruneSchedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepImages deletes uploaded post images that no post references.
func (s *Scheduler) SweepImages(ctx context.Context) (int, error) {
	images, err := store.New(s.db).ListPostImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing post images: %w", err)
	}

	removed, err := s.processor.SweepOrphans(images, s.opts.OrphanGrace)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.Info("removed orphaned images", "count", removed)
	}
	return removed, nil
}

// PruneEvents deletes audit log entries older than the retention period.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	n, err := store.New(s.db).DeleteEventsBefore(ctx, time.Now().Add(-s.opts.EventRetention))
	if err != nil {
		return 0, fmt.Errorf("deleting old events: %w", err)
	}
	if n > 0 {
		s.logger.Info("pruned old events", "count", n)
	}
	return n, nil
}
