package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MJE43/pocketbandit/internal/game"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/rules/builtin"
	"github.com/MJE43/pocketbandit/internal/store"
)

type fixedStatus struct{ snap game.Snapshot }

func (f fixedStatus) Snapshot() game.Snapshot { return f.snap }

func newTestServer(t *testing.T, status StatusSource) (*Server, *store.SQLiteDB) {
	t.Helper()
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	catalog, err := rules.NewCatalog(builtin.FS, prefs.NewMemory())
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	return NewServer(status, db, catalog, nil), db
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, fixedStatus{game.Snapshot{Phase: game.PhasePlaying}})

	w := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp HealthResponse
	decode(t, w, &resp)
	if resp.Status != HealthStatusHealthy {
		t.Errorf("Expected healthy, got %s", resp.Status)
	}
	if resp.Checks["database"].Status != HealthStatusHealthy {
		t.Errorf("Expected database check healthy, got %+v", resp.Checks["database"])
	}
	if resp.Checks["session"].Message != string(game.PhasePlaying) {
		t.Errorf("Expected session check to report the phase, got %+v", resp.Checks["session"])
	}
	if resp.RequestID == "" {
		t.Errorf("Expected request id to be set")
	}
}

func TestHealthDegradedOnSessionError(t *testing.T) {
	s, _ := newTestServer(t, fixedStatus{game.Snapshot{Phase: game.PhaseFailed, Error: "boom"}})

	w := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp HealthResponse
	decode(t, w, &resp)
	if resp.Status != HealthStatusDegraded {
		t.Errorf("Expected degraded, got %s", resp.Status)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t, fixedStatus{game.Snapshot{Phase: game.PhasePlaying, Variation: "Classic", Credit: 42}})

	w := get(t, s, "/api/v1/status")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var snap game.Snapshot
	decode(t, w, &snap)
	if snap.Variation != "Classic" || snap.Credit != 42 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}

func TestStatusUnavailableWithoutSession(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := get(t, s, "/api/v1/status")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}
	if got := w.Header().Get("X-Error-Type"); got != ErrTypeServiceUnavailable {
		t.Errorf("Expected error type %s, got %s", ErrTypeServiceUnavailable, got)
	}
	var apiErr APIError
	decode(t, w, &apiErr)
	if apiErr.RequestID == "" {
		t.Errorf("Expected request id in error")
	}
}

func TestVariationsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := get(t, s, "/api/v1/variations")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp VariationsResponse
	decode(t, w, &resp)
	if len(resp.Variations) != 2 {
		t.Fatalf("Expected 2 variations, got %d", len(resp.Variations))
	}
	first := resp.Variations[0]
	if first.File != "classic.json" || first.Name != "Classic" || !first.Selected {
		t.Errorf("Unexpected first variation: %+v", first)
	}
	if resp.Variations[1].Selected {
		t.Errorf("Expected only the current variation to be selected")
	}
}

func TestRTPEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, name := range []string{"classic.json", "Classic"} {
		w := get(t, s, "/api/v1/variations/"+name+"/rtp")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", name, w.Code)
		}
		var resp RTPResponse
		decode(t, w, &resp)
		if resp.Exact.Variation != "Classic" {
			t.Errorf("Expected Classic report, got %q", resp.Exact.Variation)
		}
		if !resp.Exact.RTP.IsPositive() {
			t.Errorf("Expected positive RTP, got %s", resp.Exact.RTP)
		}
		if resp.Simulation != nil {
			t.Errorf("Expected no simulation without spins")
		}
	}

	w := get(t, s, "/api/v1/variations/classic/rtp?spins=1000&seed=7")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp RTPResponse
	decode(t, w, &resp)
	if resp.Simulation == nil || resp.Simulation.Spins != 1000 {
		t.Errorf("Expected 1000 simulated spins, got %+v", resp.Simulation)
	}
}

func TestRTPEndpointErrors(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		target  string
		status  int
		errType string
	}{
		{"/api/v1/variations/nope/rtp", http.StatusNotFound, ErrTypeVariationNotFound},
		{"/api/v1/variations/classic/rtp?spins=abc", http.StatusBadRequest, ErrTypeValidation},
		{"/api/v1/variations/classic/rtp?spins=2000000", http.StatusBadRequest, ErrTypeValidation},
		{"/api/v1/variations/classic/rtp?seed=-1", http.StatusBadRequest, ErrTypeValidation},
	}
	for _, tt := range tests {
		w := get(t, s, tt.target)
		if w.Code != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.target, tt.status, w.Code)
			continue
		}
		var apiErr APIError
		decode(t, w, &apiErr)
		if apiErr.Type != tt.errType {
			t.Errorf("%s: expected error type %s, got %s", tt.target, tt.errType, apiErr.Type)
		}
	}
}

func TestRoundsEndpoint(t *testing.T) {
	s, db := newTestServer(t, nil)
	ctx := context.Background()

	var rounds []store.Round
	for i := 1; i <= 3; i++ {
		rounds = append(rounds, store.Round{SessionID: "s1", Variation: "Classic", Round: i, Bet: 1, RuleIndex: -1})
	}
	rounds = append(rounds, store.Round{SessionID: "s2", Variation: "Fruit Frenzy", Round: 1, Bet: 2, RuleIndex: 0, Payout: 10})
	if err := db.SaveRounds(ctx, rounds); err != nil {
		t.Fatalf("Failed to save rounds: %v", err)
	}

	w := get(t, s, "/api/v1/rounds?session=s1&perPage=2")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var list store.RoundsList
	decode(t, w, &list)
	if list.TotalCount != 3 || list.TotalPages != 2 || len(list.Rounds) != 2 {
		t.Errorf("Unexpected page: count=%d pages=%d len=%d", list.TotalCount, list.TotalPages, len(list.Rounds))
	}

	w = get(t, s, "/api/v1/rounds?variation=Fruit%20Frenzy")
	decode(t, w, &list)
	if list.TotalCount != 1 || list.Rounds[0].Payout != 10 {
		t.Errorf("Unexpected variation filter result: %+v", list)
	}

	w = get(t, s, "/api/v1/rounds?page=0")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for page=0, got %d", w.Code)
	}
}

func TestRecoveryHandler(t *testing.T) {
	eh := NewErrorHandler(nil)
	h := eh.RecoveryHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if got := w.Header().Get("X-Error-Category"); got != string(CategorySystem) {
		t.Errorf("Expected system category, got %s", got)
	}
}
