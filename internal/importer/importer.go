// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package importer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Importer loads data files into one target engine.
type Importer interface {
	// Prepare verifies connectivity and creates the schema tables.
	Prepare(ctx context.Context, schema []string) error
	// ImportFile loads one file into its table. The file is known to exist.
	ImportFile(ctx context.Context, task Task) error
	// Close releases connections.
	Close()
}

// RunOptions tunes an import run.
type RunOptions struct {
	// Workers caps concurrent file loads; <=1 means sequential, which is
	// the comparable-benchmark baseline.
	Workers int
	// OnChange, when set, is called after every task state transition so
	// the CLI can re-render progress.
	OnChange func(*State)
}

// Summary is the outcome of an import run.
type Summary struct {
	Tasks     int
	Completed int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Run executes tasks against imp. Files that do not exist are skips, not
// failures; a failed file never aborts the other tasks.
func Run(ctx context.Context, imp Importer, tasks []Task, opts RunOptions) (*Summary, *State, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	notify := opts.OnChange
	if notify == nil {
		notify = func(*State) {}
	}

	start := time.Now()
	state := NewState()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			state.Start(task.Table)
			notify(state)
			if !exists(task.Path) {
				state.Skip(task.Table)
				notify(state)
				return nil
			}
			if err := imp.ImportFile(ctx, task); err != nil {
				state.Fail(task.Table, task.Path, err.Error())
			} else {
				state.Complete(task.Table)
			}
			notify(state)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, state, err
	}

	completed, skipped, failed := state.Counts()
	return &Summary{
		Tasks:     len(tasks),
		Completed: completed,
		Skipped:   skipped,
		Failed:    failed,
		Elapsed:   time.Since(start),
	}, state, nil
}
