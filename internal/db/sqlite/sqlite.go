// Package sqlite is a single-file implementation of the task and user
// store, for running the planner without a postgres server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dayplanner/internal/db"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps sql.DB with the store operations.
type DB struct {
	*sql.DB
	path string

	now func() time.Time
}

// Open opens (creating if needed) the database file at path and brings the
// schema up to date.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; transactions queue on the pool instead of
	// failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	database := &DB{DB: sqlDB, path: path, now: time.Now}
	if err := database.initializeSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return database, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas() {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Path returns the filesystem path to the database file.
func (d *DB) Path() string {
	return d.path
}

// Ping checks the database file is usable. It takes a context like the
// postgres pool's Ping.
func (d *DB) Ping(ctx context.Context) error {
	return d.PingContext(ctx)
}

// Migrate re-applies the schema. Open already did this; every statement is
// idempotent.
func (d *DB) Migrate(_ context.Context) error {
	return d.initializeSchema()
}

func (d *DB) initializeSchema() error {
	for _, schema := range allTableSchemas() {
		if _, err := d.Exec(schema); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, index := range allIndexes() {
		if _, err := d.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	_, err := d.Exec(
		`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)
		ON CONFLICT (version) DO NOTHING`,
		SchemaVersion, d.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// timestamp returns the current time at the precision stored on disk.
func (d *DB) timestamp() time.Time {
	return d.now().UTC().Truncate(time.Microsecond)
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

// translateUniqueViolation maps SQLite UNIQUE failures onto the shared
// store errors. SQLite only names the column, so the message is inspected.
func translateUniqueViolation(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}
	msg := sqliteErr.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return db.ErrDuplicateUsername
	case strings.Contains(msg, "users.email"):
		return db.ErrDuplicateEmail
	case strings.Contains(msg, "tasks.user_id"):
		return db.ErrDuplicateSlot
	}
	return err
}
