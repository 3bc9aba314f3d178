// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holokit/internal/content"
)

func newSchemaCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the content pack JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := content.GenerateSchema()
			if err != nil {
				return oops.Wrapf(err, "generate schema")
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(append(schema, '\n'))
				return oops.Wrap(err)
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
				return oops.With("path", outPath).Wrapf(err, "create directory")
			}
			if err := os.WriteFile(outPath, append(schema, '\n'), 0o600); err != nil {
				return oops.With("path", outPath).Wrapf(err, "write schema")
			}
			cmd.Printf("Generated %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the schema to a file instead of stdout")
	return cmd
}
