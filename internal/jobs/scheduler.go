// Package jobs runs background work on cron schedules.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Job errors are logged and never stop the
// schedule.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	logger *zap.Logger
}

// NewScheduler creates a scheduler whose jobs receive ctx.
func NewScheduler(ctx context.Context, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		logger: logger.Named("jobs"),
	}
}

// AddFunc schedules job under name. spec is a standard cron expression or a
// descriptor such as "@every 10s".
func (s *Scheduler) AddFunc(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug("job started", zap.String("job", name))
		if err := job(s.ctx); err != nil {
			s.logger.Warn("job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("jobs: schedule %s: %w", name, err)
	}
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", s.Len()))
}

// Stop halts the schedule and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Run starts the scheduler and stops it once ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}
