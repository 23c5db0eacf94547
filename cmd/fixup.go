// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"dsbench/cli/internal/distribute"
	"dsbench/cli/internal/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var fixupDir string

// fixupCmd normalizes interval syntax across a query corpus.
var fixupCmd = &cobra.Command{
	Use:   "fixup",
	Short: "Normalize 'N days' interval syntax in a query corpus",
	Long: `The fixup command rewrites bare "N days" date arithmetic, as emitted by the
query generator, into the portable "INTERVAL 'N' day" form. Every .sql file
under the directory is fixed in place, recursively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		changed, err := distribute.FixupDir(fixupDir)
		if err != nil {
			return errors.Wrap(errors.DistributeFailed, "fixup failed", err)
		}
		pterm.Printf("Fixed %d file(s)\n", changed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixupCmd)
	fixupCmd.Flags().StringVar(&fixupDir, "dir", "", "Directory of .sql files to fix in place")
	fixupCmd.MarkFlagRequired("dir")
}
