// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/holomush/holokit/internal/config"
	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/store"
)

// newMigrateCmd creates the migrate subcommand with its children.
func (c *cli) newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the save-game database schema",
		Long: `Apply, roll back or inspect the PostgreSQL save-game schema. The
database is taken from --database-url or $` + config.DatabaseURLEnv + `.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: c.withMigrator(func(cmd *cobra.Command, m *store.Migrator, _ []string) error {
			pending, err := m.PendingMigrations()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				cmd.Println("No pending migrations")
				return nil
			}
			cmd.Printf("Applying %d migration(s)...\n", len(pending))
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations, dropping the save-game tables",
		Args:  cobra.NoArgs,
		RunE: c.withMigrator(func(cmd *cobra.Command, m *store.Migrator, _ []string) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: c.withMigrator(func(cmd *cobra.Command, m *store.Migrator, _ []string) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			pending, err := m.PendingMigrations()
			if err != nil {
				return err
			}
			cmd.Printf("version: %d\ndirty: %t\npending: %v\n", version, dirty, pending)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Record a schema version without running migrations",
		Long:  `Record a schema version without running migrations, to recover from a dirty state.`,
		Args:  cobra.ExactArgs(1),
		RunE: c.withMigrator(func(cmd *cobra.Command, m *store.Migrator, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return errs.InvalidArgument("version", args[0], "version must be an integer")
			}
			if err := m.Force(version); err != nil {
				return err
			}
			cmd.Printf("Forced version %d\n", version)
			return nil
		}),
	})

	return cmd
}

type migratorFunc func(cmd *cobra.Command, m *store.Migrator, args []string) error

// withMigrator resolves config, opens a Migrator and closes it after fn.
func (c *cli) withMigrator(fn migratorFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := c.setup(cmd)
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errs.InvalidArgument("database-url", "",
				"migrate requires --database-url or $%s", config.DatabaseURLEnv)
		}

		m, err := store.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				errs.LogError(logger, "failed to close migrator", err)
			}
		}()

		return fn(cmd, m, args)
	}
}
