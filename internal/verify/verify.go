// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package verify inventories an imported TPC-DS database: per-table exact
// row counts and on-disk sizes, comparable across target engines.
package verify

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5"

	_ "github.com/go-sql-driver/mysql"
)

// TableInfo is the inventory line for one table.
type TableInfo struct {
	Name  string
	Rows  int64
	Bytes int64
}

// Report is a full inventory of one target.
type Report struct {
	Tables     []TableInfo
	TotalRows  int64
	TotalBytes int64
}

// Postgres inventories the public schema of a PostgreSQL target.
func Postgres(ctx context.Context, dsn string) (*Report, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, `
		select c.relname, pg_total_relation_size(c.oid)
		from pg_catalog.pg_class c
		join pg_catalog.pg_namespace n on n.oid = c.relnamespace
		where n.nspname = 'public' and c.relkind = 'r'
		order by c.relname`)
	if err != nil {
		return nil, err
	}
	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.Bytes); err != nil {
			rows.Close()
			return nil, err
		}
		tables = append(tables, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tables {
		// relname comes from the catalog, not user input.
		q := fmt.Sprintf(`select count(*) from public.%q`, tables[i].Name)
		if err := conn.QueryRow(ctx, q).Scan(&tables[i].Rows); err != nil {
			return nil, fmt.Errorf("count %s: %w", tables[i].Name, err)
		}
	}
	return newReport(tables), nil
}

// MySQL inventories the current schema of a MySQL or MariaDB target. The
// DSN must be in go-sql-driver format and name a database.
func MySQL(ctx context.Context, dsn string) (*Report, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("mysql connection failed: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		select table_name, coalesce(data_length + index_length, 0)
		from information_schema.tables
		where table_schema = database() and table_type = 'BASE TABLE'
		order by table_name`)
	if err != nil {
		return nil, err
	}
	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.Bytes); err != nil {
			rows.Close()
			return nil, err
		}
		tables = append(tables, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tables {
		q := fmt.Sprintf("select count(*) from `%s`", tables[i].Name)
		if err := db.QueryRowContext(ctx, q).Scan(&tables[i].Rows); err != nil {
			return nil, fmt.Errorf("count %s: %w", tables[i].Name, err)
		}
	}
	return newReport(tables), nil
}

func newReport(tables []TableInfo) *Report {
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	r := &Report{Tables: tables}
	for _, t := range tables {
		r.TotalRows += t.Rows
		r.TotalBytes += t.Bytes
	}
	return r
}

// Rows renders the report as table rows (with header) for display, sizes
// humanized and a grand-total line last.
func (r *Report) Rows() [][]string {
	out := [][]string{{"Table", "Rows", "Size"}}
	for _, t := range r.Tables {
		out = append(out, []string{
			t.Name,
			humanize.Comma(t.Rows),
			humanize.IBytes(uint64(t.Bytes)),
		})
	}
	out = append(out, []string{
		"total",
		humanize.Comma(r.TotalRows),
		humanize.IBytes(uint64(r.TotalBytes)),
	})
	return out
}
