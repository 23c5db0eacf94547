// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	goerrors "errors"
	"fmt"

	"dsbench/cli/internal/config"
	"dsbench/cli/internal/distribute"
	"dsbench/cli/internal/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	distInputDir     string
	distOutputDir    string
	distMappingPath  string
	distWorkers      int
	distSingleLine   bool
	distKeepComments bool
)

// distributeCmd rewrites a directory of standard TPC-DS queries into
// federated multi-catalog form using an external table mapping.
var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Rewrite standard queries into federated multi-catalog form",
	Long: `The distribute command rewrites every .sql file in the input directory so
that each bare table reference becomes catalog.schema.table, according to
the mapping file. Everything else in the query text is preserved byte for
byte. Files are processed independently: a file that fails to rewrite is
reported at the end and produces no output file, while the rest of the
directory is still rewritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := distOutputDir
		if outDir == "" {
			outDir = distInputDir + "_federated"
		}
		workers := distWorkers
		if workers == 0 {
			if c, err := config.Load(); err == nil && c.Concurrency > 0 {
				workers = c.Concurrency
			}
		}

		mapping, err := distribute.LoadMapping(distMappingPath)
		if err != nil {
			// A broken mapping fails the whole run before any file is read.
			return errors.Wrap(errors.ConfigInvalid, "mapping rejected", err)
		}

		rep, err := distribute.RunBatch(cmd.Context(), distInputDir, outDir, mapping, distribute.BatchOptions{
			Workers:      workers,
			SingleLine:   distSingleLine,
			KeepComments: distKeepComments,
		})
		if err != nil {
			return errors.Wrap(errors.DistributeFailed, "batch run aborted", err)
		}

		pterm.Printf("Rewrote %d/%d files into %s\n", rep.Succeeded, rep.Inputs, outDir)
		if !rep.Failed() {
			return nil
		}

		pterm.Println()
		pterm.NewStyle(pterm.FgRed).Printf("%d file(s) failed:\n", len(rep.Failures))
		for _, f := range rep.Failures {
			var unresolved *distribute.UnresolvedTableError
			if goerrors.As(f.Err, &unresolved) {
				pterm.Printf("  %s: table %q has no mapping entry\n", f.File, unresolved.Table)
				continue
			}
			pterm.Printf("  %s: %v\n", f.File, f.Err)
		}
		return fmt.Errorf("%d of %d files failed", len(rep.Failures), rep.Inputs)
	},
}

func init() {
	rootCmd.AddCommand(distributeCmd)
	distributeCmd.Flags().StringVar(&distInputDir, "input-dir", "", "Directory of .sql query files to rewrite")
	distributeCmd.Flags().StringVar(&distMappingPath, "mapping", "", "Table mapping file (YAML or JSON)")
	distributeCmd.Flags().StringVar(&distOutputDir, "output-dir", "", "Output directory (default: <input-dir>_federated)")
	distributeCmd.Flags().IntVar(&distWorkers, "workers", 0, "Concurrent file rewrites (default: configured concurrency)")
	distributeCmd.Flags().BoolVar(&distSingleLine, "single-line", false, "Also write whitespace-collapsed copies under single_line/")
	distributeCmd.Flags().BoolVar(&distKeepComments, "keep-comments", false, "Keep -- comment lines instead of stripping them")
	distributeCmd.MarkFlagRequired("input-dir")
	distributeCmd.MarkFlagRequired("mapping")
}
