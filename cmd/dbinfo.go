// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"dsbench/cli/internal/keychain"
	"dsbench/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd represents the dbinfo command for displaying configured targets.
// It shows every target's connection string with credentials masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show configured target connection strings",
	Long: `The dbinfo command displays the configured connection string (DSN) of each
target with credentials masked, so you can verify which databases the harness
will use without exposing secrets.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		var rows [][]string
		rows = append(rows, []string{"Target", "Source", "DSN"})

		km, kmErr := keychain.GetManager()

		for _, target := range validTargets {
			if env := strings.TrimSpace(os.Getenv(envDSNVar(target))); env != "" {
				rows = append(rows, []string{target, envDSNVar(target), logging.Mask(env)})
				continue
			}
			if kmErr == nil {
				if stored, err := km.LoadDSN(target); err == nil && strings.TrimSpace(stored) != "" {
					rows = append(rows, []string{target, "keychain", logging.Mask(stored)})
					continue
				}
			}
			rows = append(rows, []string{target, "-", "not configured"})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		pterm.Println()
		pterm.Println("To configure a target, run: dsbench connect --target <name>")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
