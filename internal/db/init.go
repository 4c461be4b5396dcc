// Package db opens and initializes the storage backends of the vault.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.etcd.io/bbolt"
)

// The owner reference is not enforced on delete: removing an account
// leaves its secrets behind for the orphan sweeper.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    identity TEXT PRIMARY KEY,
    credential_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS secrets (
    id TEXT PRIMARY KEY,
    location TEXT NOT NULL,
    ciphertext TEXT NOT NULL,
    owner_identity TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_secrets_owner ON secrets(owner_identity);
`

// SQLite leaves foreign keys unenforced unless PRAGMA foreign_keys is set.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    identity TEXT NOT NULL PRIMARY KEY,
    credential_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS secrets (
    id TEXT PRIMARY KEY,
    location TEXT NOT NULL,
    ciphertext TEXT NOT NULL,
    owner_identity TEXT NOT NULL,
    FOREIGN KEY(owner_identity) REFERENCES accounts(identity)
);

CREATE INDEX IF NOT EXISTS idx_secrets_owner ON secrets(owner_identity);
`

// InitPostgres connects to PostgreSQL and creates the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// InitSQLite opens (or creates) the SQLite file at path and creates the schema.
func InitSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// OpenBolt opens (or creates) the bbolt file at path.
func OpenBolt(path string) (*bbolt.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("open bolt: empty path")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	return db, nil
}
