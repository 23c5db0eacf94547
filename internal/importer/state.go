// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package importer

import (
	"sort"
	"sync"
)

// State tracks import progress across workers. All methods are safe for
// concurrent use.
type State struct {
	// Active maps table names to their in-flight file count.
	Active map[string]int
	// Completed maps table names to loaded file counts.
	Completed map[string]int
	// Skipped counts files that did not exist on disk.
	Skipped int
	// Failed maps file paths to failure reasons.
	Failed map[string]string
	// mu protects all fields.
	mu sync.Mutex
}

// NewState creates a State with initialized maps.
func NewState() *State {
	return &State{
		Active:    make(map[string]int),
		Completed: make(map[string]int),
		Failed:    make(map[string]string),
	}
}

// Start marks one file of a table as in flight.
func (s *State) Start(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Active[table]++
}

// Complete marks one file of a table as loaded.
func (s *State) Complete(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active(table)
	s.Completed[table]++
}

// Skip records a file that was not present.
func (s *State) Skip(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active(table)
	s.Skipped++
}

// Fail records a failed file with its reason.
func (s *State) Fail(table, path, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active(table)
	s.Failed[path] = reason
}

// active decrements the in-flight count, dropping the entry at zero.
// Callers must hold mu.
func (s *State) active(table string) {
	if s.Active[table] <= 1 {
		delete(s.Active, table)
	} else {
		s.Active[table]--
	}
}

// Counts returns (completed files, skipped, failed).
func (s *State) Counts() (completed, skipped, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.Completed {
		completed += n
	}
	return completed, s.Skipped, len(s.Failed)
}

// ActiveTables returns the tables with in-flight files, sorted.
func (s *State) ActiveTables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Active))
	for table := range s.Active {
		out = append(out, table)
	}
	sort.Strings(out)
	return out
}

// Failures returns a copy of the failure map.
func (s *State) Failures() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.Failed))
	for k, v := range s.Failed {
		out[k] = v
	}
	return out
}
