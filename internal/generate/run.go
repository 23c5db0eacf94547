// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package generate

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// chunkTimeout bounds a single dsdgen child. Large scale factors take a
// while; anything past this is treated as a hung generator.
const chunkTimeout = time.Hour

// ChunkFailure is one chunk the run could not generate.
type ChunkFailure struct {
	Chunk int
	Err   error
}

// Report summarizes a generation run.
type Report struct {
	Chunks    int
	Succeeded int
	Failures  []ChunkFailure
	Elapsed   time.Duration
}

// Failed reports whether any chunk failed.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// RunChunks generates all chunks, up to opts.Workers at a time. Chunk
// failures are collected rather than aborting the run, so a single bad chunk
// can be regenerated alone afterwards.
func RunChunks(ctx context.Context, opts Options, logf func(format string, args ...any)) (*Report, error) {
	if opts.Chunks < 1 {
		return nil, fmt.Errorf("chunks must be >= 1, got %d", opts.Chunks)
	}
	if opts.Image == "" && opts.DsdgenPath == "" {
		return nil, fmt.Errorf("either a docker image or a local dsdgen binary is required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, err
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	rep := &Report{Chunks: opts.Chunks}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for chunk := 1; chunk <= opts.Chunks; chunk++ {
		chunk := chunk
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logf("chunk %d/%d: generating", chunk, opts.Chunks)
			err := runChunk(ctx, opts, chunk)
			mu.Lock()
			if err != nil {
				rep.Failures = append(rep.Failures, ChunkFailure{Chunk: chunk, Err: err})
				logf("chunk %d/%d: failed: %v", chunk, opts.Chunks, err)
			} else {
				rep.Succeeded++
				logf("chunk %d/%d: done", chunk, opts.Chunks)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(rep.Failures, func(i, j int) bool { return rep.Failures[i].Chunk < rep.Failures[j].Chunk })
	rep.Elapsed = time.Since(start)
	return rep, nil
}

// runChunk executes one dsdgen child with the per-chunk timeout.
func runChunk(ctx context.Context, opts Options, chunk int) error {
	ctx, cancel := context.WithTimeout(ctx, chunkTimeout)
	defer cancel()

	var cmd *exec.Cmd
	if opts.Image != "" {
		toolArgs := ChunkArgs(opts.Scale, chunk, opts.Chunks, containerDataDir)
		if opts.DistsPath != "" {
			toolArgs = append(toolArgs, "-distributions", opts.DistsPath)
		}
		cmd = exec.CommandContext(ctx, "docker", dockerArgs(opts.Image, opts.OutputDir, "dsdgen", toolArgs)...)
	} else {
		toolArgs := ChunkArgs(opts.Scale, chunk, opts.Chunks, opts.OutputDir)
		if opts.DistsPath != "" {
			toolArgs = append(toolArgs, "-distributions", opts.DistsPath)
		}
		cmd = exec.CommandContext(ctx, opts.DsdgenPath, toolArgs...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("chunk %d timed out after %s", chunk, chunkTimeout)
		}
		return fmt.Errorf("dsdgen chunk %d: %w: %s", chunk, err, tail(out))
	}
	return nil
}

// RunQueries executes a single dsqgen invocation for the query set.
func RunQueries(ctx context.Context, o QueryOptions) error {
	if o.Image == "" && o.DsqgenPath == "" {
		return fmt.Errorf("either a docker image or a local dsqgen binary is required")
	}
	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return err
	}

	var cmd *exec.Cmd
	if o.Image != "" {
		// Mount templates and output under the container data dir.
		args := []string{
			"run", "--rm",
			"-v", o.TemplatesDir + ":" + containerDataDir + "/templates",
			"-v", o.OutputDir + ":" + containerDataDir + "/out",
			o.Image,
			"dsqgen",
		}
		args = append(args, QueryArgs(o, containerDataDir+"/templates", containerDataDir+"/out")...)
		cmd = exec.CommandContext(ctx, "docker", args...)
	} else {
		cmd = exec.CommandContext(ctx, o.DsqgenPath, QueryArgs(o, o.TemplatesDir, o.OutputDir)...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("dsqgen: %w: %s", err, tail(out))
	}
	return nil
}

// tail returns the last few lines of tool output for error messages.
func tail(out []byte) string {
	text := strings.TrimSpace(string(out))
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
