package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/round"
)

// RoundSaver persists a batch of rounds.
type RoundSaver interface {
	SaveRounds(ctx context.Context, rounds []Round) error
}

// Recorder buffers settled rounds and writes them to the store in batches.
// It is a round.Observer; RoundSettled is called from the simulation loop
// while Flush may run from the scheduler.
type Recorder struct {
	saver     RoundSaver
	sessionID string
	flushSize int
	logger    *zap.Logger

	mu     sync.Mutex
	buffer []Round
}

// NewRecorder creates a recorder for the given session. flushSize controls
// how many rounds are buffered before a batch insert.
func NewRecorder(saver RoundSaver, sessionID string, flushSize int, logger *zap.Logger) *Recorder {
	if flushSize <= 0 {
		flushSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		saver:     saver,
		sessionID: sessionID,
		flushSize: flushSize,
		logger:    logger.Named("recorder"),
		buffer:    make([]Round, 0, flushSize),
	}
}

func (r *Recorder) RoundStarted(round.Start) {}

func (r *Recorder) ReelStopped(int, int) {}

// RoundSettled buffers the outcome and flushes once the buffer is full.
func (r *Recorder) RoundSettled(o round.Outcome) {
	r.mu.Lock()
	r.buffer = append(r.buffer, Round{
		SessionID:  r.sessionID,
		Variation:  o.Variation,
		Round:      o.Round,
		Bet:        o.Bet,
		Payline:    o.Payline,
		RuleIndex:  o.Rule,
		Payout:     o.Payout,
		LuckyBonus: o.LuckyBonus,
		Credit:     o.Credit,
	})
	full := len(r.buffer) >= r.flushSize
	r.mu.Unlock()

	if full {
		if err := r.Flush(context.Background()); err != nil {
			r.logger.Warn("flush rounds", zap.Error(err))
		}
	}
}

// Pending returns the number of buffered rounds.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

// Flush writes the buffered rounds. A failed batch goes back to the front of
// the buffer and is retried on the next flush.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	if len(r.buffer) == 0 {
		r.mu.Unlock()
		return nil
	}
	batch := r.buffer
	r.buffer = make([]Round, 0, r.flushSize)
	r.mu.Unlock()

	if err := r.saver.SaveRounds(ctx, batch); err != nil {
		r.mu.Lock()
		r.buffer = append(batch, r.buffer...)
		r.mu.Unlock()
		return err
	}
	r.logger.Debug("flushed rounds", zap.Int("count", len(batch)))
	return nil
}
