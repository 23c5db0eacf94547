// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// bulkSessionSettings relax per-row bookkeeping during bulk loads. They are
// applied best effort: MariaDB and managed MySQL reject some of them, and a
// rejected setting is not worth failing an import over.
var bulkSessionSettings = []string{
	"SET SESSION autocommit = 0",
	"SET SESSION unique_checks = 0",
	"SET SESSION foreign_key_checks = 0",
	"SET SESSION sql_log_bin = 0",
}

// MySQLImporter loads data files into MySQL or MariaDB with
// LOAD DATA LOCAL INFILE.
type MySQLImporter struct {
	db *sql.DB
}

// NewMySQLImporter opens a connection pool sized for the worker count. The
// DSN must be in go-sql-driver format.
func NewMySQLImporter(dsn string, workers int) (*MySQLImporter, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql DSN: %w", err)
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	db.SetMaxOpenConns(workers + 1)
	return &MySQLImporter{db: db}, nil
}

// Prepare pings the server and creates the schema tables.
func (m *MySQLImporter) Prepare(ctx context.Context, schema []string) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("mysql connection failed: %w", err)
	}
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// ImportFile loads one pipe-delimited file. The file path is registered
// with the driver so only files the importer chose can be read, and the
// whole load runs on one pinned connection so the session tuning applies
// to the LOAD DATA statement.
func (m *MySQLImporter) ImportFile(ctx context.Context, task Task) error {
	mysql.RegisterLocalFile(task.Path)
	defer mysql.DeregisterLocalFile(task.Path)

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, setting := range bulkSessionSettings {
		// best effort
		conn.ExecContext(ctx, setting)
	}

	load := fmt.Sprintf(
		"LOAD DATA LOCAL INFILE %s INTO TABLE %s FIELDS TERMINATED BY '|' LINES TERMINATED BY '\\n'",
		quoteSQLString(task.Path), task.Table,
	)
	if _, err := conn.ExecContext(ctx, load); err != nil {
		return fmt.Errorf("load %s from %s: %w", task.Table, task.Path, err)
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit %s: %w", task.Table, err)
	}
	return nil
}

// Close releases the pool.
func (m *MySQLImporter) Close() {
	m.db.Close()
}

// quoteSQLString single-quotes a file path for embedding in LOAD DATA.
func quoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
