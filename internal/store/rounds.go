package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SaveRounds inserts a batch of rounds. Missing ids and timestamps are
// filled in.
func (s *SQLiteDB) SaveRounds(ctx context.Context, rounds []Round) error {
	if len(rounds) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rounds (
		id, session_id, variation, round, bet, payline, rule_index, payout, lucky_bonus, credit, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()

	for i := range rounds {
		r := &rounds[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		payline, err := json.Marshal(r.Payline)
		if err != nil {
			return fmt.Errorf("store: encode payline: %w", err)
		}
		var session any
		if r.SessionID != "" {
			session = r.SessionID
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, session, r.Variation, r.Round, r.Bet, string(payline),
			r.RuleIndex, r.Payout, r.LuckyBonus, r.Credit, r.CreatedAt,
		); err != nil {
			return fmt.Errorf("store: insert round: %w", err)
		}
	}
	return tx.Commit()
}

// ListRounds returns a page of rounds, newest round number first.
func (s *SQLiteDB) ListRounds(ctx context.Context, q RoundsQuery) (*RoundsList, error) {
	where := "WHERE 1=1"
	args := []any{}
	if q.Variation != "" {
		where += " AND variation = ?"
		args = append(args, q.Variation)
	}
	if q.SessionID != "" {
		where += " AND session_id = ?"
		args = append(args, q.SessionID)
	}

	var totalCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rounds "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("store: count rounds: %w", err)
	}

	if q.PerPage <= 0 {
		q.PerPage = 50
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	totalPages := (totalCount + q.PerPage - 1) / q.PerPage
	offset := (q.Page - 1) * q.PerPage

	rows, err := s.db.QueryContext(ctx, `SELECT
		id, COALESCE(session_id, ''), variation, round, bet, payline, rule_index, payout, lucky_bonus, credit, created_at
		FROM rounds `+where+`
		ORDER BY created_at DESC, round DESC
		LIMIT ? OFFSET ?`, append(args, q.PerPage, offset)...)
	if err != nil {
		return nil, fmt.Errorf("store: query rounds: %w", err)
	}
	defer rows.Close()

	rounds := []Round{}
	for rows.Next() {
		var r Round
		var payline string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Variation, &r.Round, &r.Bet, &payline,
			&r.RuleIndex, &r.Payout, &r.LuckyBonus, &r.Credit, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan round: %w", err)
		}
		if err := json.Unmarshal([]byte(payline), &r.Payline); err != nil {
			return nil, fmt.Errorf("store: decode payline of %s: %w", r.ID, err)
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate rounds: %w", err)
	}

	return &RoundsList{
		Rounds:     rounds,
		TotalCount: totalCount,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: totalPages,
	}, nil
}
