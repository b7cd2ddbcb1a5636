// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/users/auth"
)

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

// roleAdmin grants and revokes linked roles by account email.
type roleAdmin struct {
	users userFinder
	roles auth.RoleRepository
}

func (admin *roleAdmin) account(ctx context.Context, email string) (*auth.User, error) {
	user, err := admin.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", email, err)
	}
	return user, nil
}

func newRolesCommand(environment environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect and change the roles linked to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newRolesListCommand(environment))
	cmd.AddCommand(newRolesChangeCommand(environment, "grant", "Link a role to an account"))
	cmd.AddCommand(newRolesChangeCommand(environment, "revoke", "Unlink a role from an account"))
	return cmd
}

func newRolesListCommand(environment environment) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show linked roles, legacy flags and the effective role set",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			admin, closeFn, err := environment.roles(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := admin.account(ctx, email)
			if err != nil {
				return err
			}

			linked, err := admin.roles.LinkedRoleNames(ctx, user.ID)
			if err != nil {
				return err
			}
			flags, err := admin.roles.LegacyFlags(ctx, user.ID)
			if err != nil {
				return err
			}

			resolved, err := auth.NewRoleResolver(admin.roles).ResolveRoles(ctx, &sec.Principal{ID: user.ID})
			if err != nil {
				return err
			}

			cmd.Printf("account:   %s (%s)\n", user.Email, user.ID)
			cmd.Printf("linked:    %s\n", joinOrDash(linked))
			cmd.Printf("flags:     admin=%t staff=%t member=%t\n", flags.IsAdmin, flags.IsStaff, flags.IsMember)
			cmd.Printf("effective: %s\n", joinOrDash(resolved.Names()))
			cmd.Printf("landing:   %s\n", auth.LandingRoute(resolved))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (exact match)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRolesChangeCommand(environment environment, action, short string) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := sec.NormalizeRole(role)
			if name == "" {
				return errors.New("--role must not be blank")
			}

			ctx := commandContext(cmd)
			admin, closeFn, err := environment.roles(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := admin.account(ctx, email)
			if err != nil {
				return err
			}

			if action == "grant" {
				if err := admin.roles.Grant(ctx, user.ID, name); err != nil {
					return err
				}
				cmd.Printf("granted %s to %s\n", name, user.Email)
				return nil
			}

			removed, err := admin.roles.Revoke(ctx, user.ID, name)
			if err != nil {
				return err
			}
			if !removed {
				cmd.Printf("%s did not hold %s\n", user.Email, name)
				return nil
			}
			cmd.Printf("revoked %s from %s\n", name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (exact match)")
	cmd.Flags().StringVar(&role, "role", "", "Role name, e.g. member, staff, admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
