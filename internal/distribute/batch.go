// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package distribute

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SingleLineDir is the subdirectory of the output directory that receives a
// whitespace-collapsed copy of each rewritten query.
const SingleLineDir = "single_line"

// startMarker matches the per-query boundary comments the query generator
// emits, used to segment multi-query files.
var startMarker = regexp.MustCompile(`(?im)^\s*--\s*start query\b`)

// BatchOptions tunes a directory run.
type BatchOptions struct {
	// Workers caps concurrent file rewrites; <=1 means sequential.
	Workers int
	// SingleLine also writes collapsed copies under SingleLineDir.
	SingleLine bool
	// KeepComments disables the default stripping of "--" comment lines.
	KeepComments bool
}

// FileFailure is one file the batch could not rewrite.
type FileFailure struct {
	File string
	Err  error
}

// Report summarizes a batch run. A run with failures still rewrites every
// other file; callers decide the exit status from Failed().
type Report struct {
	Inputs    int
	Succeeded int
	Failures  []FileFailure
}

// Failed reports whether any file failed.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// RunBatch rewrites every .sql file under inDir into outDir, keeping file
// names. Files are independent: each is rewritten with the shared read-only
// mapping, failures are collected rather than aborting the run, and no
// output file is ever written for a failed input.
func RunBatch(ctx context.Context, inDir, outDir string, m *Mapping, opts BatchOptions) (*Report, error) {
	files, err := listSQLFiles(inDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sql files found in %s", inDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if opts.SingleLine {
		if err := os.MkdirAll(filepath.Join(outDir, SingleLineDir), 0o755); err != nil {
			return nil, err
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	rep := &Report{Inputs: len(files)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range files {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := rewriteFile(inDir, outDir, name, m, opts)
			mu.Lock()
			if err != nil {
				rep.Failures = append(rep.Failures, FileFailure{File: name, Err: err})
			} else {
				rep.Succeeded++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(rep.Failures, func(i, j int) bool { return rep.Failures[i].File < rep.Failures[j].File })
	return rep, nil
}

// rewriteFile distributes one input file and writes the result atomically.
func rewriteFile(inDir, outDir, name string, m *Mapping, opts BatchOptions) error {
	data, err := os.ReadFile(filepath.Join(inDir, name))
	if err != nil {
		return err
	}

	var out []string
	for _, segment := range SegmentQueries(string(data)) {
		cleaned := segment
		if !opts.KeepComments {
			cleaned = StripComments(cleaned)
		}
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			continue
		}
		res, err := Distribute(cleaned, m)
		if err != nil {
			return tagFile(err, name)
		}
		out = append(out, res.Text)
	}
	if len(out) == 0 {
		return tagFile(&ParseError{Pos: 0, Msg: "empty statement"}, name)
	}
	text := strings.Join(out, ";\n\n")

	if err := writeAtomic(filepath.Join(outDir, name), text); err != nil {
		return err
	}
	if opts.SingleLine {
		line := strings.Join(strings.Fields(text), " ")
		if err := writeAtomic(filepath.Join(outDir, SingleLineDir, name), line); err != nil {
			return err
		}
	}
	return nil
}

// SegmentQueries splits a multi-query file on the generator's per-query
// start markers. Files without markers are a single query.
func SegmentQueries(text string) []string {
	locs := startMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	var parts []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		parts = append(parts, text[loc[0]:end])
	}
	return parts
}

// StripComments removes "--" comment lines and one trailing semicolon, the
// same cleanup the original corpus preparation applied.
func StripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.TrimRight(strings.Join(kept, "\n"), " \t\r\n")
	out = strings.TrimSuffix(out, ";")
	return out
}

// writeAtomic writes via a temp file and rename so readers never observe a
// partially written query.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dsbench-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// listSQLFiles returns the sorted .sql file names directly under dir.
func listSQLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// tagFile attaches the file name to the distributor's typed errors.
func tagFile(err error, name string) error {
	switch e := err.(type) {
	case *ParseError:
		e.File = name
	case *UnresolvedTableError:
		e.File = name
	}
	return err
}
