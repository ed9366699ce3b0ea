// Package store persists preferences, round history and autoplay sessions in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB is the SQLite backed store.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens the database at path. Use ":memory:" for a throwaway
// database.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	// SQLite is not concurrent for writes, and an in-memory database lives
	// only as long as its single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the database.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates or upgrades the schema.
func (s *SQLiteDB) Migrate() error {
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			variation TEXT NOT NULL,
			script TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			rounds INTEGER NOT NULL DEFAULT 0,
			wagered INTEGER NOT NULL DEFAULT 0,
			returned INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			variation TEXT NOT NULL,
			round INTEGER NOT NULL,
			bet INTEGER NOT NULL,
			payline TEXT NOT NULL,
			rule_index INTEGER NOT NULL,
			payout INTEGER NOT NULL,
			credit INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, m := range baseMigrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("store: base migration failed: %w", err)
		}
	}

	alterMigrations := []string{
		`ALTER TABLE rounds ADD COLUMN lucky_bonus INTEGER NOT NULL DEFAULT 0`,
	}
	for _, m := range alterMigrations {
		if _, err := s.db.Exec(m); err != nil && !isDuplicateColumnError(err) {
			return fmt.Errorf("store: alter migration failed: %w", err)
		}
	}

	indexMigrations := []string{
		`CREATE INDEX IF NOT EXISTS idx_rounds_session ON rounds(session_id, round)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_variation ON rounds(variation, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC)`,
	}
	for _, m := range indexMigrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("store: index migration failed: %w", err)
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// LoadPreferences returns every stored preference.
func (s *SQLiteDB) LoadPreferences(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return nil, fmt.Errorf("store: load preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("store: scan preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// SavePreferences upserts values in a single transaction.
func (s *SQLiteDB) SavePreferences(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO preferences(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v, now); err != nil {
			return fmt.Errorf("store: save preference %q: %w", k, err)
		}
	}
	return tx.Commit()
}
