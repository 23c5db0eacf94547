// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package distribute

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeQueryFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunBatchCollectsFailures(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	m := testMapping(t)

	// 8 good files, 2 referencing tables the mapping does not know.
	good := []string{"query_1.sql", "query_2.sql", "query_3.sql", "query_4.sql",
		"query_5.sql", "query_6.sql", "query_8.sql", "query_10.sql"}
	for _, name := range good {
		writeQueryFile(t, inDir, name, "select i_item_id from item;\n")
	}
	writeQueryFile(t, inDir, "query_7.sql", "select * from warehouse;\n")
	writeQueryFile(t, inDir, "query_9.sql", "select * from inventory;\n")

	rep, err := RunBatch(context.Background(), inDir, outDir, m, BatchOptions{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Inputs)
	assert.Equal(t, 8, rep.Succeeded)
	assert.True(t, rep.Failed())
	require.Len(t, rep.Failures, 2)
	assert.Equal(t, "query_7.sql", rep.Failures[0].File)
	assert.Equal(t, "query_9.sql", rep.Failures[1].File)

	var ute *UnresolvedTableError
	require.ErrorAs(t, rep.Failures[0].Err, &ute)
	assert.Equal(t, "warehouse", ute.Table)
	assert.Equal(t, "query_7.sql", ute.File)
	require.ErrorAs(t, rep.Failures[1].Err, &ute)
	assert.Equal(t, "inventory", ute.Table)

	for _, name := range good {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	// Failed inputs must leave no output behind.
	_, err = os.Stat(filepath.Join(outDir, "query_7.sql"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outDir, "query_9.sql"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunBatchRewritesContent(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeQueryFile(t, inDir, "q.sql", "-- header comment\nselect i_item_id\nfrom item\nwhere i_class = 'shirts';\n")

	rep, err := RunBatch(context.Background(), inDir, outDir, testMapping(t), BatchOptions{})
	require.NoError(t, err)
	assert.False(t, rep.Failed())

	got, err := os.ReadFile(filepath.Join(outDir, "q.sql"))
	require.NoError(t, err)
	assert.Equal(t, "select i_item_id\nfrom ds1.public.item\nwhere i_class = 'shirts'", string(got))
}

func TestRunBatchSingleLine(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeQueryFile(t, inDir, "q.sql", "select i_item_id\nfrom item\norder by\n  i_item_id;\n")

	_, err := RunBatch(context.Background(), inDir, outDir, testMapping(t), BatchOptions{SingleLine: true})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(outDir, SingleLineDir, "q.sql"))
	require.NoError(t, err)
	line := string(got)
	assert.NotContains(t, line, "\n")
	assert.Equal(t, "select i_item_id from ds1.public.item order by i_item_id", line)
}

func TestRunBatchSegmentsOnStartMarkers(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	content := strings.Join([]string{
		"-- start query 1 in stream 0 using template query1.tpl",
		"select i_item_id from item;",
		"-- end query 1 in stream 0",
		"-- start query 2 in stream 0 using template query2.tpl",
		"select d_year from date_dim;",
		"-- end query 2 in stream 0",
		"",
	}, "\n")
	writeQueryFile(t, inDir, "stream.sql", content)

	_, err := RunBatch(context.Background(), inDir, outDir, testMapping(t), BatchOptions{})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(outDir, "stream.sql"))
	require.NoError(t, err)
	want := "select i_item_id from ds1.public.item;\n\nselect d_year from ds2.public.date_dim"
	assert.Equal(t, want, string(got))
}

func TestRunBatchKeepComments(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeQueryFile(t, inDir, "q.sql", "-- note\nselect i_item_id from item")

	_, err := RunBatch(context.Background(), inDir, outDir, testMapping(t), BatchOptions{KeepComments: true})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(outDir, "q.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "-- note")
	assert.Contains(t, string(got), "ds1.public.item")
}

func TestRunBatchEmptyDir(t *testing.T) {
	_, err := RunBatch(context.Background(), t.TempDir(), t.TempDir(), testMapping(t), BatchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .sql files")
}

func TestRunBatchParseFailure(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeQueryFile(t, inDir, "broken.sql", "select * from item where i_class = 'unterminated")

	rep, err := RunBatch(context.Background(), inDir, outDir, testMapping(t), BatchOptions{})
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)

	var pe *ParseError
	require.ErrorAs(t, rep.Failures[0].Err, &pe)
	assert.Equal(t, "broken.sql", pe.File)
}

func TestSegmentQueries(t *testing.T) {
	t.Run("no markers", func(t *testing.T) {
		parts := SegmentQueries("select 1")
		require.Len(t, parts, 1)
	})
	t.Run("two markers", func(t *testing.T) {
		text := "-- start query 1\nselect 1;\n-- start query 2\nselect 2;\n"
		parts := SegmentQueries(text)
		require.Len(t, parts, 2)
		assert.Contains(t, parts[0], "select 1")
		assert.NotContains(t, parts[0], "select 2")
		assert.Contains(t, parts[1], "select 2")
	})
	t.Run("preamble before first marker is dropped", func(t *testing.T) {
		text := "header\n-- start query 1\nselect 1;\n"
		parts := SegmentQueries(text)
		require.Len(t, parts, 1)
		assert.NotContains(t, parts[0], "header")
	})
}

func TestStripComments(t *testing.T) {
	in := "-- start query 1\nselect 1\nfrom item; \n"
	assert.Equal(t, "select 1\nfrom item", StripComments(in))
}
