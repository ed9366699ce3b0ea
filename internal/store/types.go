package store

import (
	"time"

	"github.com/MJE43/pocketbandit/internal/rules"
)

// Round is one settled round as stored in the history.
type Round struct {
	ID         string           `json:"id"`
	SessionID  string           `json:"sessionId,omitempty"`
	Variation  string           `json:"variation"`
	Round      int              `json:"round"`
	Bet        int              `json:"bet"`
	Payline    [rules.Reels]int `json:"payline"`
	RuleIndex  int              `json:"ruleIndex"`
	Payout     int              `json:"payout"`
	LuckyBonus int              `json:"luckyBonus"`
	Credit     int              `json:"credit"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Session is an autoplay session.
type Session struct {
	ID        string     `json:"id"`
	Variation string     `json:"variation"`
	Script    string     `json:"script"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Rounds    int        `json:"rounds"`
	Wagered   int        `json:"wagered"`
	Returned  int        `json:"returned"`
}

// SessionTotals are the aggregates written when a session ends.
type SessionTotals struct {
	Rounds   int
	Wagered  int
	Returned int
}

// RoundsQuery filters and paginates the round history.
type RoundsQuery struct {
	Variation string
	SessionID string
	Page      int
	PerPage   int
}

// RoundsList is one page of rounds.
type RoundsList struct {
	Rounds     []Round `json:"rounds"`
	TotalCount int     `json:"totalCount"`
	Page       int     `json:"page"`
	PerPage    int     `json:"perPage"`
	TotalPages int     `json:"totalPages"`
}
