// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"time"

	"dsbench/cli/internal/errors"
	"dsbench/cli/internal/verify"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	verTarget string
	verDSN    string
)

// verifyCmd reports per-table row counts and sizes of an imported target.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Show per-table row counts and sizes of an imported target",
	Long: `The verify command inventories the target database: every user table with
its exact row count and on-disk size, plus a grand total. Running it against
each target after an import makes the engines directly comparable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkTarget(verTarget); err != nil {
			return err
		}
		dsn, err := resolveDSN(verTarget, verDSN)
		if err != nil {
			return err
		}

		stopSpinner := startInlineSpinner(os.Stderr, "counting rows", spinnerFrames, 100*time.Millisecond)
		var rep *verify.Report
		if targetIsMySQL(verTarget) {
			rep, err = verify.MySQL(cmd.Context(), dsn)
		} else {
			rep, err = verify.Postgres(cmd.Context(), dsn)
		}
		stopSpinner()
		if err != nil {
			return errors.Wrap(errors.ConnectionFailed, "verify failed", err)
		}

		return pterm.DefaultTable.WithHasHeader().WithData(rep.Rows()).Render()
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verTarget, "target", "", "Target engine: postgres, mysql or mariadb")
	verifyCmd.Flags().StringVar(&verDSN, "dsn", "", "Connection string (overridden by env and keychain)")
	verifyCmd.MarkFlagRequired("target")
}
