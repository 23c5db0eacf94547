// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package tpcds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTableSet(t *testing.T) {
	if len(Tables) != 25 {
		t.Fatalf("expected 25 tables, got %d", len(Tables))
	}
	seen := map[string]bool{}
	for _, name := range Tables {
		if seen[name] {
			t.Errorf("duplicate table %q", name)
		}
		seen[name] = true
	}
	for _, want := range []string{"store_sales", "date_dim", "dbgen_version"} {
		if !IsTable(want) {
			t.Errorf("IsTable(%q) = false", want)
		}
	}
	if IsTable("orders") {
		t.Error("IsTable(\"orders\") = true")
	}
	if !IsTable("STORE_SALES") {
		t.Error("IsTable should be case-insensitive")
	}
}

func TestFileNames(t *testing.T) {
	if got := ChunkFileName("store_sales", 3, 16); got != "store_sales_3_16.dat" {
		t.Errorf("ChunkFileName = %q", got)
	}
	if got := CombinedFileName("item"); got != "item.dat" {
		t.Errorf("CombinedFileName = %q", got)
	}
	if got := PartFileName("store_sales", 7); got != "store_sales_part007.dat" {
		t.Errorf("PartFileName = %q", got)
	}
}

func TestNormalizeDDL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercase",
			in:   "create table item\n(\n    i_item_sk integer\n)",
			want: "CREATE TABLE IF NOT EXISTS item\n(\n    i_item_sk integer\n)",
		},
		{
			name: "uppercase with leading whitespace",
			in:   "  CREATE TABLE store (s_store_sk integer)",
			want: "CREATE TABLE IF NOT EXISTS store (s_store_sk integer)",
		},
		{
			name: "non create-table passes through",
			in:   "drop table item",
			want: "drop table item",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDDL(tt.in); got != tt.want {
				t.Errorf("NormalizeDDL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	script := "-- TPC-DS schema\ncreate table a (x integer);\n\ncreate table b\n(\n  y integer\n);\n"
	stmts := SplitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "create table a (x integer)" {
		t.Errorf("first statement = %q", stmts[0])
	}
}

func TestLoadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	script := "create table a (x integer);\ncreate table b (y integer);\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	stmts, err := LoadSchema(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	for _, s := range stmts {
		if got, want := s[:26], "CREATE TABLE IF NOT EXISTS"; got != want {
			t.Errorf("statement not normalized: %q", s)
		}
	}

	if _, err := LoadSchema(filepath.Join(t.TempDir(), "absent.sql")); err == nil {
		t.Error("expected error for missing schema file")
	}
}
