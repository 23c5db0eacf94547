// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresImporter streams data files into PostgreSQL with client-side COPY.
type PostgresImporter struct {
	pool *pgxpool.Pool
}

// NewPostgresImporter connects a pool sized for the worker count.
func NewPostgresImporter(ctx context.Context, dsn string, workers int) (*PostgresImporter, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	cfg.MaxConns = int32(workers + 1)
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PostgresImporter{pool: pool}, nil
}

// Prepare pings the server and creates the schema tables.
func (p *PostgresImporter) Prepare(ctx context.Context, schema []string) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	for _, stmt := range schema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// ImportFile streams one pipe-delimited file with COPY FROM STDIN. dsdgen
// writes empty fields for NULL, so NULL '' matches its output exactly.
func (p *PostgresImporter) ImportFile(ctx context.Context, task Task) error {
	f, err := os.Open(task.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	sql := fmt.Sprintf(`COPY %s FROM STDIN WITH (FORMAT text, DELIMITER '|', NULL '')`, task.Table)
	if _, err := conn.Conn().PgConn().CopyFrom(ctx, f, sql); err != nil {
		return fmt.Errorf("copy %s from %s: %w", task.Table, task.Path, err)
	}
	return nil
}

// Close releases the pool.
func (p *PostgresImporter) Close() {
	p.pool.Close()
}
