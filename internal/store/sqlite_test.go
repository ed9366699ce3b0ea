package store

import (
	"context"
	"errors"
	"testing"

	"github.com/MJE43/pocketbandit/internal/prefs"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SavePreferences(ctx, map[string]string{"a": "1", "b": "true"}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := db.SavePreferences(ctx, map[string]string{"a": "2"}); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	got, err := db.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(got) != 2 || got["a"] != "2" || got["b"] != "true" {
		t.Errorf("Unexpected preferences: %v", got)
	}
}

func TestPreferencesCacheBackedByStore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cache, err := prefs.New(ctx, db, nil)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	cache.SetInt(prefs.CreditsKey("Classic"), 42)
	if err := cache.Flush(ctx); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}

	reloaded, err := prefs.New(ctx, db, nil)
	if err != nil {
		t.Fatalf("Failed to reload cache: %v", err)
	}
	if got := reloaded.Int(prefs.CreditsKey("Classic"), 0); got != 42 {
		t.Errorf("Expected 42 credits, got %d", got)
	}
}

func TestListRounds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var rounds []Round
	for i := 1; i <= 5; i++ {
		v := "Classic"
		if i%2 == 0 {
			v = "Fruit Frenzy"
		}
		rounds = append(rounds, Round{
			SessionID: "s1",
			Variation: v,
			Round:     i,
			Bet:       1,
			Payline:   [3]int{i % 3, 1, 2},
			RuleIndex: -1,
			Credit:    10 - i,
		})
	}
	if err := db.SaveRounds(ctx, rounds); err != nil {
		t.Fatalf("Failed to save rounds: %v", err)
	}
	for _, r := range rounds {
		if r.ID == "" {
			t.Errorf("Expected id to be assigned")
		}
	}

	result, err := db.ListRounds(ctx, RoundsQuery{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("Failed to list rounds: %v", err)
	}
	if result.TotalCount != 5 || result.TotalPages != 3 || len(result.Rounds) != 2 {
		t.Errorf("Unexpected page: count=%d pages=%d len=%d", result.TotalCount, result.TotalPages, len(result.Rounds))
	}

	result, err = db.ListRounds(ctx, RoundsQuery{Variation: "Classic"})
	if err != nil {
		t.Fatalf("Failed to list rounds: %v", err)
	}
	if result.TotalCount != 3 {
		t.Errorf("Expected 3 Classic rounds, got %d", result.TotalCount)
	}
	if result.PerPage != 50 || result.Page != 1 {
		t.Errorf("Expected default pagination, got page=%d perPage=%d", result.Page, result.PerPage)
	}
	for _, r := range result.Rounds {
		if r.Payline != [3]int{r.Round % 3, 1, 2} {
			t.Errorf("Round %d payline did not survive: %v", r.Round, r.Payline)
		}
		if r.SessionID != "s1" {
			t.Errorf("Expected session s1, got %q", r.SessionID)
		}
	}

	result, err = db.ListRounds(ctx, RoundsQuery{SessionID: "other"})
	if err != nil {
		t.Fatalf("Failed to list rounds: %v", err)
	}
	if result.TotalCount != 0 || result.Rounds == nil {
		t.Errorf("Expected an empty, non-nil page, got %+v", result)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sess, err := db.CreateSession(ctx, "Classic", "nextbet = 1")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	got, err := db.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.EndedAt != nil {
		t.Errorf("Expected open session")
	}

	if err := db.EndSession(ctx, sess.ID, SessionTotals{Rounds: 10, Wagered: 12, Returned: 9}); err != nil {
		t.Fatalf("Failed to end session: %v", err)
	}
	got, err = db.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.EndedAt == nil || got.Rounds != 10 || got.Wagered != 12 || got.Returned != 9 {
		t.Errorf("Unexpected ended session: %+v", got)
	}

	if _, err := db.GetSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := db.EndSession(ctx, "missing", SessionTotals{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
