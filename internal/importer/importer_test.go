// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsbench/cli/internal/tpcds"
)

// fakeImporter records imported tasks and fails configured paths.
type fakeImporter struct {
	mu       sync.Mutex
	imported []Task
	failPath map[string]bool
}

func (f *fakeImporter) Prepare(ctx context.Context, schema []string) error { return nil }

func (f *fakeImporter) ImportFile(ctx context.Context, task Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPath[task.Path] {
		return errors.New("boom")
	}
	f.imported = append(f.imported, task)
	return nil
}

func (f *fakeImporter) Close() {}

func TestBuildChunkTasks(t *testing.T) {
	tasks := BuildChunkTasks("/data", 4)
	assert.Len(t, tasks, len(tpcds.Tables)*4)
	assert.Equal(t, "dbgen_version", tasks[0].Table)
	assert.Equal(t, filepath.Join("/data", "dbgen_version_1_4.dat"), tasks[0].Path)
}

func TestBuildCombinedTasks(t *testing.T) {
	dir := t.TempDir()
	// store_sales was split, item was not.
	for _, name := range []string{"store_sales_part001.dat", "store_sales_part002.dat"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644))
	}

	tasks, err := BuildCombinedTasks(dir)
	require.NoError(t, err)

	byTable := map[string][]string{}
	for _, task := range tasks {
		byTable[task.Table] = append(byTable[task.Table], filepath.Base(task.Path))
	}
	assert.Equal(t, []string{"store_sales_part001.dat", "store_sales_part002.dat"}, byTable["store_sales"])
	assert.Equal(t, []string{"item.dat"}, byTable["item"])
}

func TestRunSkipsMissingAndCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	okPath := filepath.Join(dir, "item_1_2.dat")
	badPath := filepath.Join(dir, "store_1_2.dat")
	require.NoError(t, os.WriteFile(okPath, []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(badPath, []byte("x\n"), 0o644))

	tasks := []Task{
		{Table: "item", Path: okPath},
		{Table: "store", Path: badPath},
		{Table: "warehouse", Path: filepath.Join(dir, "warehouse_1_2.dat")}, // never generated
	}
	fake := &fakeImporter{failPath: map[string]bool{badPath: true}}

	sum, state, err := Run(context.Background(), fake, tasks, RunOptions{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Tasks)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Failed)

	require.Len(t, fake.imported, 1)
	assert.Equal(t, "item", fake.imported[0].Table)

	failures := state.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "boom", failures[badPath])
	assert.Empty(t, state.Active)
}

func TestRunSequentialOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []Task
	for _, table := range []string{"date_dim", "item", "store"} {
		p := filepath.Join(dir, table+".dat")
		require.NoError(t, os.WriteFile(p, []byte("x\n"), 0o644))
		paths = append(paths, Task{Table: table, Path: p})
	}
	fake := &fakeImporter{}

	_, _, err := Run(context.Background(), fake, paths, RunOptions{})
	require.NoError(t, err)

	// Workers <= 1 loads files in task order, the benchmark baseline.
	require.Len(t, fake.imported, 3)
	assert.Equal(t, "date_dim", fake.imported[0].Table)
	assert.Equal(t, "item", fake.imported[1].Table)
	assert.Equal(t, "store", fake.imported[2].Table)
}

func TestRunNotifiesOnChange(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "item.dat")
	require.NoError(t, os.WriteFile(p, []byte("x\n"), 0o644))

	calls := 0
	_, _, err := Run(context.Background(), &fakeImporter{}, []Task{{Table: "item", Path: p}}, RunOptions{
		OnChange: func(s *State) { calls++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls) // start + complete
}

func TestStateCounts(t *testing.T) {
	s := NewState()
	s.Start("item")
	s.Start("item")
	s.Complete("item")
	s.Skip("item")
	s.Start("store")
	s.Fail("store", "/data/store.dat", "nope")

	completed, skipped, failed := s.Counts()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, failed)
	assert.Empty(t, s.Active)
}
