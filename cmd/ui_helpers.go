// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd helper functions for terminal UI during long-running operations.
package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"dsbench/cli/internal/importer"
)

// timeRound is the display granularity for elapsed times.
const timeRound = time.Second

// spinnerFrames is the shared inline spinner animation.
var spinnerFrames = []string{"-", "\\", "|", "/"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal. The spinner runs in a separate goroutine and
// can be stopped by calling the returned function.
//
// The spinner automatically clears the line when stopped.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// primitive protection against very long lines
				if len(line) > 2000 {
					line = line[:2000]
				}
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}

// startImportArea starts an area display that re-renders import progress on
// every state change. It hides the cursor and returns an update function and
// a stop function.
func startImportArea(total int) (update func(*importer.State), stopArea func()) {
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func(*importer.State) {}, func() {}
	}
	var mu sync.Mutex
	return func(s *importer.State) {
			mu.Lock()
			defer mu.Unlock()
			area.Update(renderImportState(s, total))
		}, func() {
			area.Stop()
			cursor.Show()
		}
}

// renderImportState formats the live progress lines.
func renderImportState(s *importer.State, total int) string {
	completed, skipped, failed := s.Counts()
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d/%d files (%d skipped, %d failed)\n", completed, total, skipped, failed)

	for _, table := range s.ActiveTables() {
		fmt.Fprintf(&b, "  loading %s\n", table)
	}
	return b.String()
}
