// Package api serves read-only JSON views of the running session, the rule
// catalog and the recorded round history.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/game"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusSource publishes the live session state.
type StatusSource interface {
	Snapshot() game.Snapshot
}

// RoundLister pages through recorded rounds.
type RoundLister interface {
	ListRounds(ctx context.Context, q store.RoundsQuery) (*store.RoundsList, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// VariationSource lists the rule files. LoadAll returns variations in the
// order of Names.
type VariationSource interface {
	Names() []string
	Current() string
	LoadAll() ([]*rules.Variation, error)
}

// Server holds the HTTP dependencies.
type Server struct {
	status       StatusSource
	rounds       RoundLister
	variations   VariationSource
	logger       *zap.Logger
	errorHandler *ErrorHandler
	started      time.Time
	timeout      time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// NewServer creates a server. status and rounds may be nil; their routes
// then answer 503.
func NewServer(status StatusSource, rounds RoundLister, variations VariationSource, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")
	s := &Server{
		status:       status,
		rounds:       rounds,
		variations:   variations,
		logger:       logger,
		errorHandler: NewErrorHandler(logger),
		started:      time.Now(),
		timeout:      60 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/variations", s.handleVariations)
		r.Get("/variations/{name}/rtp", s.handleRTP)
		r.Get("/rounds", s.handleRounds)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
