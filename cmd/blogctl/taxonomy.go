// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/util"
)

func newCategoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var slug, description string
	var unpublished bool
	add := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]
			if slug == "" {
				slug = util.Slugify(title)
			}
			if !util.IsValidSlug(slug) {
				return fmt.Errorf("invalid slug %q: use lowercase letters, digits and hyphens", slug)
			}
			n, err := a.queries.CategorySlugExists(cmd.Context(), slug)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("category %q already exists", slug)
			}

			c, err := a.queries.CreateCategory(cmd.Context(), store.CreateCategoryParams{
				Title:       title,
				Description: description,
				Slug:        slug,
				IsPublished: !unpublished,
				CreatedAt:   time.Now(),
			})
			if err != nil {
				return fmt.Errorf("creating category: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created category %d (%s)\n", c.ID, c.Slug)
			return nil
		},
	}
	add.Flags().StringVar(&slug, "slug", "", "URL slug (default: derived from the title)")
	add.Flags().StringVar(&description, "description", "", "category description")
	add.Flags().BoolVar(&unpublished, "unpublished", false, "create the category hidden")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.queries.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tSLUG\tPUBLISHED\tTITLE")
			for _, c := range items {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", c.ID, c.Slug, c.IsPublished, c.Title)
			}
			return tw.Flush()
		},
	}

	setPublished := func(use, short string, published bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " SLUG",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.categoryBySlug(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := a.queries.SetCategoryPublished(cmd.Context(), c.ID, published); err != nil {
					return err
				}
				a.invalidateCategory(cmd.Context(), c.Slug)
				return nil
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete SLUG",
		Short: "Delete a category; its posts are kept without a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.categoryBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.queries.DeleteCategory(cmd.Context(), c.ID); err != nil {
				return err
			}
			a.invalidateCategory(cmd.Context(), c.Slug)
			return nil
		},
	}

	cmd.AddCommand(add, list,
		setPublished("publish", "Show a category and its posts", true),
		setPublished("unpublish", "Hide a category and its posts", false),
		del,
	)
	return cmd
}

func (a *app) categoryBySlug(ctx context.Context, slug string) (store.Category, error) {
	c, err := a.queries.GetCategoryBySlug(ctx, slug)
	if errors.Is(blog.Lookup(err), blog.ErrNotFound) {
		return c, fmt.Errorf("category %q not found", slug)
	}
	return c, err
}

func newLocationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage locations",
	}

	var unpublished bool
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.queries.CreateLocation(cmd.Context(), store.CreateLocationParams{
				Name:        args[0],
				IsPublished: !unpublished,
				CreatedAt:   time.Now(),
			})
			if err != nil {
				return fmt.Errorf("creating location: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created location %d (%s)\n", l.ID, l.Name)
			return nil
		},
	}
	add.Flags().BoolVar(&unpublished, "unpublished", false, "create the location hidden")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.queries.ListLocations(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tPUBLISHED\tNAME")
			for _, l := range items {
				_, _ = fmt.Fprintf(tw, "%d\t%t\t%s\n", l.ID, l.IsPublished, l.Name)
			}
			return tw.Flush()
		},
	}

	byID := func(use, short string, fn func(ctx context.Context, id int64) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid location id %q", args[0])
				}
				if _, err := a.queries.GetLocationByID(cmd.Context(), id); err != nil {
					if errors.Is(blog.Lookup(err), blog.ErrNotFound) {
						return fmt.Errorf("location %d not found", id)
					}
					return err
				}
				return fn(cmd.Context(), id)
			},
		}
	}

	cmd.AddCommand(add, list,
		byID("publish", "Show a location on posts", func(ctx context.Context, id int64) error {
			return a.queries.SetLocationPublished(ctx, id, true)
		}),
		byID("unpublish", "Hide a location from posts", func(ctx context.Context, id int64) error {
			return a.queries.SetLocationPublished(ctx, id, false)
		}),
		byID("delete", "Delete a location; its posts are kept without one", func(ctx context.Context, id int64) error {
			return a.queries.DeleteLocation(ctx, id)
		}),
	)
	return cmd
}
