// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command memberctl is the administrative CLI for Memberdesk.
//
// # Commands
//
//	memberctl migrate up
//	memberctl migrate version
//	memberctl roles list   --email ada@example.org
//	memberctl roles grant  --email ada@example.org --role staff
//	memberctl roles revoke --email ada@example.org --role staff
//
// Only DATABASE_URL (and optionally MIGRATION_PATH) is read from the environment.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/migration"
	pgstore "github.com/taibuivan/memberdesk/internal/platform/postgres"
	"github.com/taibuivan/memberdesk/internal/users/auth"
)

// cliConfig is the subset of server configuration the CLI needs.
type cliConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})).
		With(slog.String("app", constants.AppName))

	if err := newRootCommand(os.Stdout, productionEnv(log)).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// environment opens what the commands operate on.
type environment struct {
	migrateUp      func() error
	migrateVersion func() (uint, bool, error)
	roles          func(ctx context.Context) (*roleAdmin, func(), error)
}

func productionEnv(log *slog.Logger) environment {
	load := func() (cliConfig, error) {
		cfg := cliConfig{}
		if err := env.Parse(&cfg); err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		return cfg, nil
	}

	return environment{
		migrateUp: func() error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
		},
		migrateVersion: func() (uint, bool, error) {
			cfg, err := load()
			if err != nil {
				return 0, false, err
			}
			return migration.Version(cfg.DatabaseURL, cfg.MigrationPath)
		},
		roles: func(ctx context.Context) (*roleAdmin, func(), error) {
			cfg, err := load()
			if err != nil {
				return nil, nil, err
			}
			pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
			if err != nil {
				return nil, nil, err
			}
			admin := &roleAdmin{
				users: auth.NewUserRepository(pool),
				roles: auth.NewRoleRepository(pool),
			}
			return admin, pool.Close, nil
		},
	}
}

func newRootCommand(out io.Writer, environment environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "memberctl",
		Short:         "Administrative tasks for Memberdesk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.AddCommand(newMigrateCommand(environment))
	cmd.AddCommand(newRolesCommand(environment))
	return cmd
}

func newMigrateCommand(environment environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := environment.migrateUp(); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := environment.migrateVersion()
			if err != nil {
				return err
			}
			if dirty {
				cmd.Printf("%d (dirty)\n", version)
				return nil
			}
			cmd.Printf("%d\n", version)
			return nil
		},
	})

	return cmd
}
