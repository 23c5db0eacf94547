// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the dsbench CLI.
// It implements subcommands for TPC-DS data generation, bulk import,
// verification and federated query rewriting using the Cobra CLI framework.
// The package handles command parsing, execution, and provides a rich
// terminal UI with spinners and progress indicators.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dsbench/cli/internal/logging"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the dsbench CLI application.
var rootCmd = &cobra.Command{
	Use:           "dsbench",
	Short:         "TPC-DS benchmark harness for federated query engines",
	Long: `dsbench orchestrates a TPC-DS benchmark workflow end to end: chunked data
generation via dsdgen, parallel bulk import into PostgreSQL/MySQL/MariaDB,
import verification, and rewriting of the standard query set into
federated multi-catalog form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("dsbench %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("error", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}
