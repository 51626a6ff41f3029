// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/blogicum/internal/auth"
	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/store"
)

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var params store.CreateUserParams
	var password string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create an account",
		Long: `Create an account. The password is read from --password or, when
that is empty, from the BLOG_USER_PASSWORD environment variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Username = strings.TrimSpace(args[0])
			if !auth.ValidUsername(params.Username) {
				return fmt.Errorf("invalid username %q", params.Username)
			}
			if password == "" {
				password = os.Getenv("BLOG_USER_PASSWORD")
			}
			if problems := auth.PasswordProblems(password, params.Username); len(problems) > 0 {
				return errors.New(strings.Join(problems, " "))
			}

			n, err := a.queries.UsernameExists(cmd.Context(), params.Username, 0)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("user %q already exists", params.Username)
			}

			params.PasswordHash, err = auth.HashPassword(password)
			if err != nil {
				return err
			}
			params.DateJoined = time.Now()
			u, err := a.queries.CreateUser(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Username)
			return nil
		},
	}
	add.Flags().StringVar(&password, "password", "", "account password")
	add.Flags().StringVar(&params.Email, "email", "", "email address")
	add.Flags().StringVar(&params.FirstName, "first-name", "", "first name")
	add.Flags().StringVar(&params.LastName, "last-name", "", "last name")

	var newPassword string
	setPassword := &cobra.Command{
		Use:   "set-password USERNAME",
		Short: "Replace an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.queries.GetUserByUsername(cmd.Context(), args[0])
			if errors.Is(blog.Lookup(err), blog.ErrNotFound) {
				return fmt.Errorf("user %q not found", args[0])
			}
			if err != nil {
				return err
			}
			if newPassword == "" {
				newPassword = os.Getenv("BLOG_USER_PASSWORD")
			}
			if problems := auth.PasswordProblems(newPassword, u.Username); len(problems) > 0 {
				return errors.New(strings.Join(problems, " "))
			}
			hash, err := auth.HashPassword(newPassword)
			if err != nil {
				return err
			}
			return a.queries.UpdateUserPassword(cmd.Context(), u.ID, hash)
		},
	}
	setPassword.Flags().StringVar(&newPassword, "password", "", "new password")

	cmd.AddCommand(add, setPassword)
	return cmd
}
