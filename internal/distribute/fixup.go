// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package distribute

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// dayInterval matches the generator's bare "30 days" date arithmetic, which
// several target engines reject in favor of INTERVAL syntax.
var dayInterval = regexp.MustCompile(`(?i)\b(\d+)\s+days\b`)

// FixIntervals rewrites bare "<n> days" expressions to "INTERVAL '<n>' day".
func FixIntervals(text string) string {
	return dayInterval.ReplaceAllString(text, "INTERVAL '$1' day")
}

// FixupDir applies FixIntervals in place to every .sql file under dir,
// recursively, and returns the number of files changed.
func FixupDir(dir string) (int, error) {
	changed := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".sql") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fixed := FixIntervals(string(data))
		if fixed == string(data) {
			return nil
		}
		if err := writeAtomic(path, fixed); err != nil {
			return err
		}
		changed++
		return nil
	})
	return changed, err
}
