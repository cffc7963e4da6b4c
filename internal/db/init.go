// Package db owns the process-wide PostgreSQL handle and the schema.
package db

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    enc_salt TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    token_id TEXT NOT NULL,
    issued_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_records (
    id TEXT PRIMARY KEY,
    owner_email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
    seq BIGSERIAL,
    title TEXT NOT NULL,
    username TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    secret_nonce TEXT NOT NULL,
    secret_ciphertext TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_vault_records_owner ON vault_records (owner_email, created_at DESC);
`

var (
	initOnce sync.Once
	shared   *sql.DB
	initErr  error
)

// InitPostgres opens the shared connection pool, verifies it and applies the
// schema. The pool is initialized once per process; concurrent first callers
// do not race to open duplicate connections.
func InitPostgres(dsn string) (*sql.DB, error) {
	initOnce.Do(func() {
		shared, initErr = open(dsn)
	})
	return shared, initErr
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
