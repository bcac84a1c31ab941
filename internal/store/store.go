// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists expanded course records in a relational database
// and reads them back for listing and export.
//
// Two backends are supported through database/sql: SQLite (mattn/go-sqlite3)
// for local runs and PostgreSQL (pgx stdlib driver) for shared deployments.
// Both use the same schema. Every write is insert-if-absent, so loading the
// same document twice leaves the store unchanged.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/prospectus/pkg/types"
)

const defaultDelimiters = ";,"

// Store is a handle on the course database.
type Store struct {
	db         *sql.DB
	dialect    dialect
	delimiters string
}

// Open connects to the backend named by cfg.Driver and creates the schema if
// it does not exist. For sqlite3 the DSN is a file path whose directory is
// created on demand; foreign keys are enabled on every connection. A backend
// that refuses the first connection is retried with backoff.
func Open(ctx context.Context, cfg types.StoreConfig) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("opening %s store: empty DSN", d.driver)
	}

	dsn := cfg.DSN
	if d.driver == types.DriverSQLite {
		if dir := filepath.Dir(sqlitePath(dsn)); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(string(d.driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := pingWithRetry(ctx, db, cfg.ConnectRetries); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	delims := cfg.PrerequisiteDelimiters
	if delims == "" {
		delims = defaultDelimiters
	}

	s := &Store{db: db, dialect: d, delimiters: delims}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver reports the backend in use.
func (s *Store) Driver() types.StoreDriver {
	return s.dialect.driver
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS programs (
			program_name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			course_code TEXT PRIMARY KEY,
			course_title TEXT NOT NULL,
			credit_hours INTEGER NOT NULL,
			credit_hours_class INTEGER NOT NULL,
			credit_hours_lab INTEGER NOT NULL,
			prerequisites TEXT,
			synthetic INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS program_courses (
			program_name TEXT NOT NULL REFERENCES programs(program_name),
			course_code TEXT NOT NULL REFERENCES courses(course_code),
			semester INTEGER NOT NULL,
			PRIMARY KEY (program_name, course_code, semester)
		)`,
		`CREATE TABLE IF NOT EXISTS course_prerequisites (
			course_code TEXT NOT NULL REFERENCES courses(course_code),
			prerequisite_code TEXT NOT NULL REFERENCES courses(course_code),
			PRIMARY KEY (course_code, prerequisite_code)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_program_courses_code ON program_courses(course_code)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// sqlitePath strips a file: prefix and query parameters from a sqlite DSN.
func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_journal_mode=WAL&_foreign_keys=on"
}
