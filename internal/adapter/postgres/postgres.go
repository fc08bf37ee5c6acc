// Package postgres implements the score ledger and session repositories using
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
	now func() time.Time
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s, now: time.Now}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

var migrations = []string{
	"CREATE TABLE IF NOT EXISTS scores (username TEXT NOT NULL, model TEXT NOT NULL, title TEXT NOT NULL, semantic SMALLINT NOT NULL CHECK(semantic BETWEEN 1 AND 5), syntactic SMALLINT NOT NULL CHECK(syntactic BETWEEN 1 AND 5), fluency SMALLINT NOT NULL CHECK(fluency BETWEEN 1 AND 5), overall SMALLINT NOT NULL CHECK(overall BETWEEN 1 AND 5), seq BIGSERIAL NOT NULL, updated_at TIMESTAMPTZ NOT NULL, PRIMARY KEY (username, model, title));",
	"CREATE INDEX IF NOT EXISTS idx_scores_ledger ON scores(username, model, seq);",
	"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, username TEXT NOT NULL, entry_index INTEGER NOT NULL DEFAULT 0 CHECK(entry_index >= 0), model TEXT NOT NULL, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
	"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
