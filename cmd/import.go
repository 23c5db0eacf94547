// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"dsbench/cli/internal/config"
	"dsbench/cli/internal/errors"
	"dsbench/cli/internal/importer"
	"dsbench/cli/internal/logging"
	"dsbench/cli/internal/tpcds"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	impTarget     string
	impDSN        string
	impDataDir    string
	impSchemaPath string
	impChunks     int
	impCombined   bool
	impSequential bool
	impWorkers    int
)

// importCmd bulk-loads generated data files into a target database.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import generated data files into a target database",
	Long: `The import command loads the .dat files of a generation run into
PostgreSQL (COPY FROM STDIN) or MySQL/MariaDB (LOAD DATA LOCAL INFILE).
With --chunks N it looks for per-chunk files (<table>_<chunk>_<N>.dat);
with --combined it looks for combined files and their split parts. Chunk
files dsdgen never emitted are skipped, not treated as failures.

By default files load sequentially, the comparable-benchmark baseline;
--workers enables a concurrent load instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkTarget(impTarget); err != nil {
			return err
		}
		if !impCombined && impChunks < 1 {
			return fmt.Errorf("either --chunks N or --combined is required")
		}
		ctx := cmd.Context()

		dsn, err := resolveDSN(impTarget, impDSN)
		if err != nil {
			return err
		}

		schema, err := tpcds.LoadSchema(impSchemaPath)
		if err != nil {
			return errors.Wrap(errors.ConfigInvalid, "schema load failed", err)
		}

		var tasks []importer.Task
		if impCombined {
			tasks, err = importer.BuildCombinedTasks(impDataDir)
			if err != nil {
				return err
			}
		} else {
			tasks = importer.BuildChunkTasks(impDataDir, impChunks)
		}

		workers := impWorkers
		if workers == 0 {
			if c, err := config.Load(); err == nil && c.Concurrency > 0 {
				workers = c.Concurrency
			}
		}
		if impSequential {
			workers = 1
		}

		imp, err := newImporter(ctx, impTarget, dsn, workers)
		if err != nil {
			return errors.Wrap(errors.ConnectionFailed, logging.Mask(fmt.Sprintf("cannot open %s target", impTarget)), err)
		}
		defer imp.Close()

		if err := imp.Prepare(ctx, schema); err != nil {
			return errors.Wrap(errors.ImportFailed, "prepare failed", err)
		}

		update, stopArea := startImportArea(len(tasks))
		sum, state, err := importer.Run(ctx, imp, tasks, importer.RunOptions{
			Workers:  workers,
			OnChange: update,
		})
		stopArea()
		if err != nil {
			return errors.Wrap(errors.ImportFailed, "import run aborted", err)
		}

		pterm.Printf("Imported %d/%d files into %s (%d skipped) in %s\n",
			sum.Completed, sum.Tasks, impTarget, sum.Skipped, sum.Elapsed.Round(timeRound))
		if sum.Failed > 0 {
			pterm.Println()
			pterm.NewStyle(pterm.FgRed).Printf("%d file(s) failed:\n", sum.Failed)
			for path, reason := range state.Failures() {
				pterm.Printf("  %s: %s\n", path, logging.Mask(reason))
			}
			return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Tasks)
		}
		return nil
	},
}

// newImporter picks the engine implementation for a target.
func newImporter(ctx context.Context, target, dsn string, workers int) (importer.Importer, error) {
	if targetIsMySQL(target) {
		return importer.NewMySQLImporter(dsn, workers)
	}
	return importer.NewPostgresImporter(ctx, dsn, workers)
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&impTarget, "target", "", "Target engine: postgres, mysql or mariadb")
	importCmd.Flags().StringVar(&impDSN, "dsn", "", "Connection string (overridden by env and keychain)")
	importCmd.Flags().StringVar(&impDataDir, "data-dir", "data", "Directory holding generated .dat files")
	importCmd.Flags().StringVar(&impSchemaPath, "schema", "schema/tpcds.sql", "TPC-DS schema DDL file")
	importCmd.Flags().IntVar(&impChunks, "chunks", 0, "Number of chunks the data was generated with")
	importCmd.Flags().BoolVar(&impCombined, "combined", false, "Import combined per-table files instead of chunks")
	importCmd.Flags().BoolVar(&impSequential, "sequential", false, "Load one file at a time (benchmark baseline)")
	importCmd.Flags().IntVar(&impWorkers, "workers", 0, "Concurrent file loads (default: configured concurrency)")
	importCmd.MarkFlagRequired("target")
}
