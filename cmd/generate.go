// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"dsbench/cli/internal/config"
	"dsbench/cli/internal/errors"
	"dsbench/cli/internal/generate"
	"dsbench/cli/internal/tpcds"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	genScale       int
	genChunks      int
	genWorkers     int
	genOutputDir   string
	genImage       string
	genDsdgenPath  string
	genDistsPath   string
	genCombine     bool
	genMaxRows     int
	genQueries     bool
	genTemplates   string
	genDialect     string
	genDsqgenPath  string
)

// generateCmd wraps dsdgen/dsqgen for chunked data and query generation.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate TPC-DS data (dsdgen) or queries (dsqgen)",
	Long: `The generate command runs the external TPC-DS toolkit. Data generation is
chunked: dsdgen runs once per chunk with -parallel/-child, several chunks at
a time, so large scale factors generate in parallel. With --combine the
per-chunk files are concatenated per table afterwards, and --max-rows-per-part
splits oversized combined files.

With --queries it runs dsqgen once against a template directory instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := config.Load()

		if genQueries {
			if genTemplates == "" {
				return fmt.Errorf("--templates is required with --queries")
			}
			err := generate.RunQueries(cmd.Context(), generate.QueryOptions{
				TemplatesDir: genTemplates,
				Dialect:      genDialect,
				OutputDir:    genOutputDir,
				Scale:        scaleOrDefault(cfg),
				Image:        imageOrDefault(cfg),
				DsqgenPath:   genDsqgenPath,
			})
			if err != nil {
				return errors.Wrap(errors.GenerateFailed, "query generation failed", err)
			}
			pterm.Printf("Query set written to %s\n", genOutputDir)
			return nil
		}

		workers := genWorkers
		if workers == 0 && cfg.Concurrency > 0 {
			workers = cfg.Concurrency
		}

		rep, err := generate.RunChunks(cmd.Context(), generate.Options{
			Scale:      scaleOrDefault(cfg),
			Chunks:     genChunks,
			Workers:    workers,
			OutputDir:  genOutputDir,
			Image:      imageOrDefault(cfg),
			DsdgenPath: genDsdgenPath,
			DistsPath:  genDistsPath,
		}, pterm.Printf)
		if err != nil {
			return errors.Wrap(errors.GenerateFailed, "generation aborted", err)
		}

		pterm.Printf("Generated %d/%d chunks in %s\n", rep.Succeeded, rep.Chunks, rep.Elapsed.Round(timeRound))
		if rep.Failed() {
			for _, f := range rep.Failures {
				pterm.NewStyle(pterm.FgRed).Printf("  chunk %d: %v\n", f.Chunk, f.Err)
			}
			return fmt.Errorf("%d of %d chunks failed", len(rep.Failures), rep.Chunks)
		}

		if genCombine {
			n, err := generate.Combine(genOutputDir, genChunks)
			if err != nil {
				return errors.Wrap(errors.GenerateFailed, "combine failed", err)
			}
			pterm.Printf("Combined %d tables\n", n)

			if genMaxRows > 0 {
				if err := splitCombined(genOutputDir, genMaxRows); err != nil {
					return errors.Wrap(errors.GenerateFailed, "split failed", err)
				}
			}
		}
		return nil
	},
}

// splitCombined splits every combined table file above the row limit.
func splitCombined(dir string, maxRows int) error {
	for _, table := range tpcds.Tables {
		path := filepath.Join(dir, tpcds.CombinedFileName(table))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		parts, err := generate.SplitFile(path, maxRows)
		if err != nil {
			return err
		}
		if len(parts) > 1 {
			pterm.Printf("Split %s into %d parts\n", table, len(parts))
		}
	}
	return nil
}

// scaleOrDefault prefers the flag, then configured default, then 1.
func scaleOrDefault(cfg config.Config) int {
	if genScale > 0 {
		return genScale
	}
	if cfg.Scale > 0 {
		return cfg.Scale
	}
	return 1
}

// imageOrDefault prefers the flag over the configured toolkit image.
func imageOrDefault(cfg config.Config) string {
	if genImage != "" {
		return genImage
	}
	return cfg.Image
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVar(&genScale, "scale", 0, "Scale factor in GB (default: configured scale)")
	generateCmd.Flags().IntVar(&genChunks, "chunks", 1, "Number of dsdgen chunks")
	generateCmd.Flags().IntVar(&genWorkers, "workers", 0, "Concurrent chunks (default: configured concurrency)")
	generateCmd.Flags().StringVar(&genOutputDir, "output-dir", "data", "Directory for generated files")
	generateCmd.Flags().StringVar(&genImage, "image", "", "Docker image holding the TPC-DS toolkit")
	generateCmd.Flags().StringVar(&genDsdgenPath, "dsdgen", "", "Local dsdgen binary (used when no image is set)")
	generateCmd.Flags().StringVar(&genDistsPath, "distributions", "", "Path to tpcds.idx for a local dsdgen")
	generateCmd.Flags().BoolVar(&genCombine, "combine", false, "Concatenate per-chunk files per table after generation")
	generateCmd.Flags().IntVar(&genMaxRows, "max-rows-per-part", 0, "Split combined files above this many rows")
	generateCmd.Flags().BoolVar(&genQueries, "queries", false, "Generate the query set with dsqgen instead of data")
	generateCmd.Flags().StringVar(&genTemplates, "templates", "", "Query template directory (with --queries)")
	generateCmd.Flags().StringVar(&genDialect, "dialect", "netezza", "Template dialect (with --queries)")
	generateCmd.Flags().StringVar(&genDsqgenPath, "dsqgen", "", "Local dsqgen binary (used when no image is set)")
}
