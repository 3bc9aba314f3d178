// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/session"
)

// simulation is a scripted run read by simulate.
type simulation struct {
	Steps []step `yaml:"steps"`
}

func loadSimulation(path string) (*simulation, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.Code(errs.CodeNotFound).With("path", path).Wrapf(err, "read simulation")
	}

	var sim simulation
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sim); err != nil {
		return nil, errs.InvalidArgument("simulation", path, "invalid simulation: %v", err)
	}
	return &sim, nil
}

func (c *cli) newSimulateCmd() *cobra.Command {
	var (
		output string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "simulate <simulation.yaml> [pack.yaml]",
		Short: "Replay a scripted event stream and report progression",
		Long: `Replay a YAML list of steps (game events and XP gains) against a fresh
session and print the resulting levels, achievement counts and notifications.
With --save the final state is written to the configured store.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			cfg, logger, err := c.setup(cmd)
			if err != nil {
				return err
			}
			sim, err := loadSimulation(args[0])
			if err != nil {
				return err
			}
			pack, err := loadPack(cfg, args[1:])
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			profile, err := profileFor(cfg, logger)
			if err != nil {
				return err
			}
			s, err := session.New(pack, st, profile, session.WithLogger(logger))
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Start(cmd.Context()); err != nil {
				return err
			}
			for i, next := range sim.Steps {
				if err := next.apply(s); err != nil {
					return oops.With("step", i).With("label", next.label()).Wrap(err)
				}
			}
			if save {
				if err := s.End(cmd.Context()); err != nil {
					return err
				}
			}

			return writeOutput(cmd.OutOrStdout(), output, s.Report())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "report format (yaml or json)")
	cmd.Flags().BoolVar(&save, "save", false, "save the final state to the configured store")
	return cmd
}
