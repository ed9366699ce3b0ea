package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// CreateSession stores a new session and returns it.
func (s *SQLiteDB) CreateSession(ctx context.Context, variation, script string) (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		Variation: variation,
		Script:    script,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, variation, script, started_at) VALUES(?, ?, ?, ?)`,
		sess.ID, sess.Variation, sess.Script, sess.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create session: %w", err)
	}
	return sess, nil
}

// EndSession closes a session and stores its totals.
func (s *SQLiteDB) EndSession(ctx context.Context, id string, totals SessionTotals) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at=?, rounds=?, wagered=?, returned=? WHERE id=?`,
		time.Now().UTC(), totals.Rounds, totals.Wagered, totals.Returned, id)
	if err != nil {
		return fmt.Errorf("store: end session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetSession returns the session with the given id.
func (s *SQLiteDB) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	var ended sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, variation, script, started_at, ended_at, rounds, wagered, returned
		FROM sessions WHERE id = ?`, id).Scan(
		&sess.ID, &sess.Variation, &sess.Script, &sess.StartedAt, &ended,
		&sess.Rounds, &sess.Wagered, &sess.Returned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return &sess, nil
}
