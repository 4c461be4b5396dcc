// Package repository provides persistence implementations for accounts and
// secret entries backed by PostgreSQL, SQLite or bbolt.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/PassGuard/internal/models"
)

// Dialect selects the SQL flavour a SQLStore speaks.
type Dialect int

const (
	// Postgres uses $N placeholders (github.com/lib/pq).
	Postgres Dialect = iota
	// SQLite uses ?N placeholders (github.com/mattn/go-sqlite3).
	SQLite
)

// SQLStore implements account and secret persistence on top of database/sql.
// Every method runs as a single statement, so each call is atomic.
type SQLStore struct {
	// DB is the database handle for executing queries.
	DB      *sql.DB
	dialect Dialect
}

// NewPostgresStore creates a SQLStore for a PostgreSQL connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, dialect: Postgres}
}

// NewSQLiteStore creates a SQLStore for a SQLite database.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, dialect: SQLite}
}

// rebind rewrites $N placeholders for the store dialect.
func (s *SQLStore) rebind(query string) string {
	if s.dialect == SQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

// storageErr tags a backend failure with models.ErrStorage.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrStorage, err)
}

// lookupErr maps sql.ErrNoRows to models.ErrNotFound.
func lookupErr(what, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", what, key, models.ErrNotFound)
	}
	return storageErr("find "+what, err)
}
