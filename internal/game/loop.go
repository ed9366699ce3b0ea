package game

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Stepper is advanced by the loop. Done stops the loop.
type Stepper interface {
	Tick(delta float64)
	Done() bool
}

// Loop is a fixed-step ticker. Every tick advances the stepper by exactly
// 1/fps seconds of simulation time.
type Loop struct {
	fps    int
	logger *zap.Logger
	ticks  int64
}

// NewLoop returns a loop running at fps frames per second.
func NewLoop(fps int, logger *zap.Logger) *Loop {
	if fps <= 0 {
		fps = 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{fps: fps, logger: logger.Named("loop")}
}

// Delta is the simulation time per tick in seconds.
func (l *Loop) Delta() float64 { return 1 / float64(l.fps) }

// Ticks returns the number of ticks run so far.
func (l *Loop) Ticks() int64 { return l.ticks }

// Run ticks s until it is done or ctx is cancelled.
func (l *Loop) Run(ctx context.Context, s Stepper) error {
	l.logger.Info("loop started", zap.Int("fps", l.fps))
	ticker := time.NewTicker(time.Second / time.Duration(l.fps))
	defer ticker.Stop()

	for !s.Done() {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped by context", zap.Int64("ticks", l.ticks))
			return ctx.Err()
		case <-ticker.C:
			l.ticks++
			s.Tick(l.Delta())
		}
	}
	l.logger.Info("loop finished", zap.Int64("ticks", l.ticks))
	return nil
}

// RunFast ticks s without waiting for wall-clock time, at most maxTicks
// times. It is used for simulations and tests.
func (l *Loop) RunFast(ctx context.Context, s Stepper, maxTicks int64) error {
	for i := int64(0); i < maxTicks && !s.Done(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.ticks++
		s.Tick(l.Delta())
	}
	return nil
}
