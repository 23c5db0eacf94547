// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package tpcds holds the fixed facts of the TPC-DS corpus: the table set,
// the chunk file naming scheme dsdgen uses, and schema DDL handling.
package tpcds

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Tables is the canonical TPC-DS table set, in schema order.
var Tables = []string{
	"dbgen_version",
	"customer_address",
	"customer_demographics",
	"date_dim",
	"warehouse",
	"ship_mode",
	"time_dim",
	"reason",
	"income_band",
	"item",
	"store",
	"call_center",
	"customer",
	"web_site",
	"store_returns",
	"household_demographics",
	"web_page",
	"promotion",
	"catalog_page",
	"inventory",
	"catalog_returns",
	"web_returns",
	"web_sales",
	"catalog_sales",
	"store_sales",
}

// IsTable reports whether name is a TPC-DS table (case-insensitive).
func IsTable(name string) bool {
	name = strings.ToLower(name)
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// ChunkFileName returns the file dsdgen writes for a table when run with
// -parallel total -child chunk. Not every table appears in every chunk:
// small dimension tables are emitted by the first child only.
func ChunkFileName(table string, chunk, total int) string {
	return fmt.Sprintf("%s_%d_%d.dat", table, chunk, total)
}

// CombinedFileName returns the single-file name for a table after chunk
// concatenation (and the name dsdgen uses when run without -parallel).
func CombinedFileName(table string) string {
	return table + ".dat"
}

// PartFileName returns the name of the nth split part of a combined file.
func PartFileName(table string, part int) string {
	return fmt.Sprintf("%s_part%03d.dat", table, part)
}

var createTable = regexp.MustCompile(`(?i)^\s*create\s+table\s+`)

// NormalizeDDL rewrites a leading "create table" to the idempotent
// "CREATE TABLE IF NOT EXISTS" form so schema creation can be re-run.
func NormalizeDDL(stmt string) string {
	loc := createTable.FindStringIndex(stmt)
	if loc == nil {
		return stmt
	}
	return "CREATE TABLE IF NOT EXISTS " + stmt[loc[1]:]
}

// SplitStatements splits a DDL script into statements on semicolons,
// dropping "--" comment lines and empty statements. TPC-DS schema files
// contain no semicolons inside literals, so a plain split is safe here.
func SplitStatements(script string) []string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		stmts = append(stmts, part)
	}
	return stmts
}

// LoadSchema reads a DDL script and returns its statements with every
// create-table normalized to the idempotent form.
func LoadSchema(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	stmts := SplitStatements(string(data))
	if len(stmts) == 0 {
		return nil, fmt.Errorf("schema %s contains no statements", path)
	}
	for i, s := range stmts {
		stmts[i] = NormalizeDDL(s)
	}
	return stmts, nil
}
