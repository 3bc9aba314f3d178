// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/holokit/internal/content"
	"github.com/holomush/holokit/internal/errs"
)

func (c *cli) newValidateCmd() *cobra.Command {
	var requires string
	cmd := &cobra.Command{
		Use:   "validate [pack.yaml]",
		Short: "Validate a content pack",
		Long: `Validate a content pack against the pack JSON schema, then check the
XP curve, achievement definitions, scripts and version.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(cmd)
			if err != nil {
				return err
			}
			pack, err := loadPack(cfg, args)
			if err != nil {
				errs.LogError(logger, "content pack is invalid", err)
				return err
			}

			if requires != "" {
				ok, err := pack.Compatible(requires)
				if err != nil {
					return err
				}
				if !ok {
					return errs.InvalidArgument("requires", requires,
						"pack %s version %s does not satisfy %s", pack.Name, pack.Version, requires)
				}
			}

			return printPackSummary(cmd, pack)
		},
	}
	cmd.Flags().StringVar(&requires, "requires", "", "semver constraint the pack version must satisfy")
	return cmd
}

func printPackSummary(cmd *cobra.Command, pack *content.Pack) error {
	curve, err := pack.Curve()
	if err != nil {
		return err
	}
	cmd.Printf("%s %s: ok\n", pack.Name, pack.Version)
	cmd.Printf("  levels:       %d\n", curve.MaxLevel())
	cmd.Printf("  achievements: %d\n", len(pack.Achievements))
	for _, a := range pack.Achievements {
		cmd.Printf("    %-20s %-16s times=%d\n", a.ID, a.Kind, a.Times)
	}
	return nil
}
