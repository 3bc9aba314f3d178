// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/holokit/internal/config"
	"github.com/holomush/holokit/internal/content"
	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/logging"
	"github.com/holomush/holokit/internal/store"
)

// cli carries state shared by the subcommands of one root command.
type cli struct {
	configFile string
}

// NewRootCmd creates the root command for the holokit CLI.
func NewRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "holokit",
		Short: "holokit - progression toolkit",
		Long: `holokit resolves XP levels and drives countdown achievements from
game events. It validates content packs, replays scripted event streams and
runs a long-lived event loop over JSON lines.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&c.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/holokit/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(c.newValidateCmd())
	cmd.AddCommand(c.newSimulateCmd())
	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newMigrateCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

// setup resolves configuration and builds the logger for cmd.
func (c *cli) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Flags(), c.configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.Setup(version, cfg.LogFormat, level, cmd.ErrOrStderr()), nil
}

// loadPack loads the pack named by args[0], falling back to --content.
func loadPack(cfg *config.Config, args []string) (*content.Pack, error) {
	path := cfg.Content
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, errs.InvalidArgument("content", "", "no content pack given; pass a path or --content")
	}
	return content.Load(path)
}

// openStore builds the configured save store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.StorePostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		fs, err := store.NewFileStore(cfg.SavesDir())
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

// profileFor returns the configured profile or a new one.
func profileFor(cfg *config.Config, logger *slog.Logger) (ulid.ULID, error) {
	if cfg.Profile == "" {
		id := store.NewProfileID()
		logger.Info("no profile given, using a new one", "profile", id.String())
		return id, nil
	}
	return store.ParseProfileID(cfg.Profile)
}

// writeOutput encodes v as yaml or json.
// checkOutput rejects an unsupported report format before any work is done.
func checkOutput(format string) error {
	switch format {
	case "json", "yaml", "":
		return nil
	default:
		return errs.InvalidArgument("output", format, "output must be yaml or json")
	}
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return oops.With("format", format).Wrapf(err, "write output")
		}
		return nil
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return oops.With("format", format).Wrapf(err, "write output")
		}
		return oops.Wrap(enc.Close())
	default:
		return errs.InvalidArgument("output", format, "output must be yaml or json")
	}
}
