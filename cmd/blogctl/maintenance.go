// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/scheduler"
)

func newMaintenanceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Run maintenance jobs once",
	}

	var grace time.Duration
	sweep := &cobra.Command{
		Use:   "sweep-images",
		Short: "Delete uploaded images no post refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := scheduler.New(a.db, imaging.NewProcessor(a.uploadsDir), a.logger, scheduler.Options{OrphanGrace: grace})
			n, err := s.SweepImages(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned images\n", n)
			return nil
		},
	}
	sweep.Flags().DurationVar(&grace, "grace", scheduler.DefaultOrphanGrace, "keep files younger than this")

	var retention time.Duration
	prune := &cobra.Command{
		Use:   "prune-events",
		Short: "Delete old audit log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := scheduler.New(a.db, nil, a.logger, scheduler.Options{EventRetention: retention})
			n, err := s.PruneEvents(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d events\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&retention, "older-than", scheduler.DefaultEventRetention, "retention period")

	var limit int
	events := &cobra.Command{
		Use:   "events",
		Short: "Show the newest audit log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			items, err := a.queries.ListRecentEvents(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TIME\tLEVEL\tCATEGORY\tMESSAGE")
			for _, e := range items {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					e.CreatedAt.Local().Format(time.DateTime), e.Level, e.Category, e.Message)
			}
			return tw.Flush()
		},
	}
	events.Flags().IntVar(&limit, "limit", 20, "number of entries to show")

	cmd.AddCommand(sweep, prune, events)
	return cmd
}
