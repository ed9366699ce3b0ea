package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/stats"
	"github.com/MJE43/pocketbandit/internal/store"
)

// MaxSimulationSpins caps the spins query parameter of the RTP route.
const MaxSimulationSpins = 1_000_000

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := HealthResponse{
		Status:        HealthStatusHealthy,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		Checks:        make(map[string]HealthCheck),
		System: SystemInfo{
			GoVersion:     runtime.Version(),
			NumGoroutines: runtime.NumGoroutine(),
			MemoryAlloc:   mem.Alloc,
			GCCycles:      mem.NumGC,
		},
		RequestID: middleware.GetReqID(r.Context()),
	}

	if p, ok := s.rounds.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		start := time.Now()
		err := p.Ping(ctx)
		cancel()
		check := HealthCheck{Status: HealthStatusHealthy, Duration: time.Since(start).String()}
		if err != nil {
			check.Status = HealthStatusUnhealthy
			check.Message = err.Error()
			resp.Status = HealthStatusUnhealthy
		}
		resp.Checks["database"] = check
	}

	if s.status != nil {
		snap := s.status.Snapshot()
		check := HealthCheck{Status: HealthStatusHealthy, Message: string(snap.Phase)}
		if snap.Error != "" {
			check.Status = HealthStatusDegraded
			check.Message = snap.Error
			if resp.Status == HealthStatusHealthy {
				resp.Status = HealthStatusDegraded
			}
		}
		resp.Checks["session"] = check
	}

	status := http.StatusOK
	if resp.Status == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) unavailable(w http.ResponseWriter, r *http.Request, what string) {
	s.errorHandler.HandleError(w, r,
		NewError(ErrTypeServiceUnavailable, what+" is not available").
			WithRequestID(middleware.GetReqID(r.Context())).
			Build(),
		http.StatusServiceUnavailable)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		s.unavailable(w, r, "session")
		return
	}
	writeJSON(w, http.StatusOK, s.status.Snapshot())
}

func (s *Server) handleVariations(w http.ResponseWriter, r *http.Request) {
	names, all, err := s.loadVariations()
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	current := s.variations.Current()
	resp := VariationsResponse{
		Variations:    make([]VariationSummary, 0, len(all)),
		EngineVersion: EngineVersion,
	}
	for i, v := range all {
		resp.Variations = append(resp.Variations, VariationSummary{
			File:        names[i],
			Name:        v.Name,
			Machine:     v.Machine,
			Symbols:     len(v.Symbols),
			Rules:       len(v.PayTable),
			SeedCapital: v.SeedCapital,
			Selected:    names[i] == current,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) loadVariations() ([]string, []*rules.Variation, error) {
	names := s.variations.Names()
	all, err := s.variations.LoadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("api: load variations: %w", err)
	}
	return names, all, nil
}

// findVariation matches name against file names and normalized variation
// names.
func (s *Server) findVariation(name string) (*rules.Variation, error) {
	names, all, err := s.loadVariations()
	if err != nil {
		return nil, err
	}
	want := prefs.NormalizeName(name)
	for i, v := range all {
		if names[i] == name || prefs.NormalizeName(v.Name) == want {
			return v, nil
		}
	}
	return nil, nil
}

func (s *Server) handleRTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	name := chi.URLParam(r, "name")

	spins := 0
	if raw := r.URL.Query().Get("spins"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorHandler.HandleValidationError(w, r, "spins", "must be a non-negative integer")
			return
		}
		if n > MaxSimulationSpins {
			s.errorHandler.HandleValidationError(w, r, "spins",
				fmt.Sprintf("must not exceed %d", MaxSimulationSpins))
			return
		}
		spins = n
	}
	var seed uint64
	if raw := r.URL.Query().Get("seed"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "seed", "must be an unsigned integer")
			return
		}
		seed = n
	}

	v, err := s.findVariation(name)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	if v == nil {
		s.errorHandler.HandleError(w, r,
			NewError(ErrTypeVariationNotFound, fmt.Sprintf("variation %q not found", name)).
				WithRequestID(requestID).
				WithContext("name", name).
				Build(),
			http.StatusNotFound)
		return
	}

	resp := RTPResponse{Exact: stats.ExactRTP(v)}
	if spins > 0 {
		sim := stats.Simulate(v, engine.NewMathSource(seed), spins)
		resp.Simulation = &sim
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if s.rounds == nil {
		s.unavailable(w, r, "round history")
		return
	}
	q := r.URL.Query()
	query := store.RoundsQuery{
		Variation: q.Get("variation"),
		SessionID: q.Get("session"),
	}
	for _, p := range []struct {
		field string
		dst   *int
	}{{"page", &query.Page}, {"perPage", &query.PerPage}} {
		raw := q.Get(p.field)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorHandler.HandleValidationError(w, r, p.field, "must be a positive integer")
			return
		}
		*p.dst = n
	}
	if query.PerPage > 500 {
		s.errorHandler.HandleValidationError(w, r, "perPage", "must not exceed 500")
		return
	}

	list, err := s.rounds.ListRounds(r.Context(), query)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
