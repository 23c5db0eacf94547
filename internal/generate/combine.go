// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package generate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dsbench/cli/internal/tpcds"
)

// Combine concatenates the per-chunk files of every table in dir into a
// single <table>.dat per table. Chunks that dsdgen did not emit for a table
// are simply absent and skipped. Returns the number of combined files
// written; tables with no chunk files at all produce no output.
func Combine(dir string, chunks int) (int, error) {
	combined := 0
	for _, table := range tpcds.Tables {
		parts := 0
		outPath := filepath.Join(dir, tpcds.CombinedFileName(table))
		tmp, err := os.CreateTemp(dir, ".dsbench-combine-*")
		if err != nil {
			return combined, err
		}
		w := bufio.NewWriter(tmp)

		for chunk := 1; chunk <= chunks; chunk++ {
			src := filepath.Join(dir, tpcds.ChunkFileName(table, chunk, chunks))
			f, err := os.Open(src)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				tmp.Close()
				os.Remove(tmp.Name())
				return combined, err
			}
			if _, err := io.Copy(w, f); err != nil {
				f.Close()
				tmp.Close()
				os.Remove(tmp.Name())
				return combined, fmt.Errorf("combine %s chunk %d: %w", table, chunk, err)
			}
			f.Close()
			parts++
		}

		if err := w.Flush(); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return combined, err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return combined, err
		}
		if parts == 0 {
			os.Remove(tmp.Name())
			continue
		}
		if err := os.Rename(tmp.Name(), outPath); err != nil {
			os.Remove(tmp.Name())
			return combined, err
		}
		combined++
	}
	return combined, nil
}

// SplitFile splits a combined .dat file into parts of at most maxRows rows,
// named <table>_partNNN.dat next to the original. Files within the limit are
// left alone. Returns the part paths (or just path when no split happened).
func SplitFile(path string, maxRows int) ([]string, error) {
	if maxRows < 1 {
		return nil, fmt.Errorf("maxRows must be >= 1, got %d", maxRows)
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	table := base[:len(base)-len(filepath.Ext(base))]

	var (
		parts   []string
		out     *os.File
		w       *bufio.Writer
		rows    int
		partNum int
	)
	closePart := func() error {
		if out == nil {
			return nil
		}
		if err := w.Flush(); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}
	openPart := func() error {
		partNum++
		p := filepath.Join(dir, tpcds.PartFileName(table, partNum))
		f, err := os.Create(p)
		if err != nil {
			return err
		}
		out = f
		w = bufio.NewWriter(f)
		parts = append(parts, p)
		return nil
	}

	sc := bufio.NewScanner(in)
	// store_sales rows run long; the default scanner limit is too small.
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		if out == nil || rows == maxRows {
			if err := closePart(); err != nil {
				return nil, err
			}
			if err := openPart(); err != nil {
				return nil, err
			}
			rows = 0
		}
		w.Write(sc.Bytes())
		w.WriteByte('\n')
		rows++
	}
	if err := sc.Err(); err != nil {
		closePart()
		return nil, err
	}
	if err := closePart(); err != nil {
		return nil, err
	}

	// A single part means the file fit; drop the copy and keep the original.
	if len(parts) <= 1 {
		for _, p := range parts {
			os.Remove(p)
		}
		return []string{path}, nil
	}
	if err := os.Remove(path); err != nil {
		return nil, err
	}
	return parts, nil
}
