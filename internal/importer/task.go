// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package importer bulk-loads generated TPC-DS data files into a target
// database. PostgreSQL targets stream files over COPY; MySQL and MariaDB
// targets use LOAD DATA LOCAL INFILE. Data files dsdgen never emitted (small
// dimension tables outside the first chunk) are expected and skipped.
package importer

import (
	"os"
	"path/filepath"
	"sort"

	"dsbench/cli/internal/tpcds"
)

// Task is one file to load into one table.
type Task struct {
	Table string
	Path  string
}

// BuildChunkTasks lists the per-chunk files of a parallel generation run:
// one task per table per chunk, whether or not the file exists. Missing
// files are resolved at run time as skips, so the task list is the full
// cross product.
func BuildChunkTasks(dataDir string, chunks int) []Task {
	var tasks []Task
	for _, table := range tpcds.Tables {
		for chunk := 1; chunk <= chunks; chunk++ {
			tasks = append(tasks, Task{
				Table: table,
				Path:  filepath.Join(dataDir, tpcds.ChunkFileName(table, chunk, chunks)),
			})
		}
	}
	return tasks
}

// BuildCombinedTasks lists the combined files of a run, picking up split
// parts (<table>_partNNN.dat) when a combined file was divided.
func BuildCombinedTasks(dataDir string) ([]Task, error) {
	var tasks []Task
	for _, table := range tpcds.Tables {
		parts, err := filepath.Glob(filepath.Join(dataDir, table+"_part*.dat"))
		if err != nil {
			return nil, err
		}
		if len(parts) > 0 {
			sort.Strings(parts)
			for _, p := range parts {
				tasks = append(tasks, Task{Table: table, Path: p})
			}
			continue
		}
		tasks = append(tasks, Task{
			Table: table,
			Path:  filepath.Join(dataDir, tpcds.CombinedFileName(table)),
		})
	}
	return tasks, nil
}

// exists reports whether path is a regular file.
func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
