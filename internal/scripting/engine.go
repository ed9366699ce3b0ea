// Package scripting drives autoplay with user supplied JavaScript
// strategies run in a goja sandbox.
package scripting

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/player"
	"github.com/MJE43/pocketbandit/internal/round"
)

// State represents the scripting engine's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateError   State = "error"
)

// DefaultScript bets one coin, raises the bet after a loss and pulls fast
// enough to spin at top speed.
const DefaultScript = `
nextbet = 1
pulltime = 150
dobet = function() {
	if (win) {
		nextbet = 1
	} else {
		nextbet = Math.min(BET_SLOTS, previousbet + 1)
	}
	if (nextbet > credit) {
		nextbet = credit
	}
	brake = losses > 0 && losses % 5 == 0
}
`

// Decision is what the script wants for the next round.
type Decision struct {
	Bet      int
	PullTime time.Duration
	Brake    bool
}

// Snapshot is a serializable view of the engine.
type Snapshot struct {
	State State     `json:"state"`
	Error string    `json:"error,omitempty"`
	Vars  Variables `json:"vars"`
}

// Engine runs a strategy script. It is a round.Observer so that settled
// rounds update the variables the script sees on its next call.
type Engine struct {
	mu     sync.RWMutex
	state  State
	err    error
	vm     *VM
	vars   Variables
	logger *zap.Logger
}

// NewEngine returns an idle engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{state: StateIdle, logger: logger.Named("script")}
}

// Start executes script once and checks that it defines dobet(). It is
// rejected while the engine is running.
func (e *Engine) Start(script string, p *player.Player) error {
	e.mu.Lock()
	if e.state == StateRunning {
		e.mu.Unlock()
		return fmt.Errorf("%w: engine is already running", engine.ErrInvalidOperation)
	}
	e.vm = NewVM(e.logger)
	e.vars = Variables{
		Credit:      p.Credit,
		Round:       p.Round,
		Payline:     p.Payline,
		LuckyCoin:   p.LuckyCoinIndex,
		Streak:      p.StreakOfLuck - p.StreakOfBadLuck,
		PreviousBet: 0,
		NextBet:     1,
		Running:     true,
	}
	e.state = StateRunning
	e.err = nil
	vm := e.vm
	e.mu.Unlock()

	vm.SetVariables(&e.vars)
	if err := vm.Execute(script); err != nil {
		e.setError(err)
		return err
	}
	if !vm.HasDobet() {
		err := fmt.Errorf("script must define a dobet() function")
		e.setError(err)
		return err
	}
	vm.SyncVariables(&e.vars)
	e.logger.Info("script started", zap.Int("credit", p.Credit))
	return nil
}

// Stop halts a running engine.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning {
		return fmt.Errorf("%w: engine is not running", engine.ErrInvalidOperation)
	}
	e.state = StateStopped
	e.vars.Running = false
	return nil
}

// Next runs dobet() and returns the decision for the coming round. The bet
// is clamped to the bet slots. When the script calls stop() the engine
// moves to stopped and ok is false.
func (e *Engine) Next() (d Decision, ok bool, err error) {
	e.mu.RLock()
	state, vm := e.state, e.vm
	e.mu.RUnlock()
	if state != StateRunning {
		return Decision{}, false, nil
	}

	vm.SetVariables(&e.vars)
	if err := vm.CallDobet(); err != nil {
		e.setError(err)
		return Decision{}, false, err
	}
	vm.SyncVariables(&e.vars)
	if vm.IsStopRequested() {
		e.logger.Info("script requested stop", zap.Int("round", e.vars.Round))
		_ = e.Stop()
		return Decision{}, false, nil
	}

	bet := e.vars.NextBet
	if bet < 0 {
		bet = 0
	}
	if bet > player.BetSlots {
		bet = player.BetSlots
	}
	pull := e.vars.PullTime
	if pull < 0 {
		pull = 0
	}
	return Decision{
		Bet:      bet,
		PullTime: time.Duration(pull) * time.Millisecond,
		Brake:    e.vars.Brake,
	}, true, nil
}

func (e *Engine) setError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateError
	e.err = err
	e.vars.Running = false
	e.logger.Warn("script failed", zap.Error(err))
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Err returns the error that moved the engine to StateError.
func (e *Engine) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// Snapshot returns the current state and variables.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := Snapshot{State: e.state, Vars: e.vars}
	if e.err != nil {
		s.Error = e.err.Error()
	}
	return s
}

// Logs returns the script's log buffer.
func (e *Engine) Logs() []LogEntry {
	e.mu.RLock()
	vm := e.vm
	e.mu.RUnlock()
	if vm == nil {
		return nil
	}
	return vm.Logs()
}

func (e *Engine) RoundStarted(s round.Start) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars.Credit = s.Credit
}

func (e *Engine) ReelStopped(int, int) {}

// RoundSettled feeds the outcome to the script variables.
func (e *Engine) RoundSettled(o round.Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := &e.vars
	v.Credit = o.Credit
	v.Round = o.Round
	v.Win = o.Win
	v.Payout = o.Payout
	v.PreviousBet = o.Bet
	v.Payline = o.Payline
	v.Streak = o.StreakOfLuck - o.StreakOfBadLuck
	v.Bets++
	if o.Win {
		v.Wins++
	} else {
		v.Losses++
	}
}

// SetLuckyCoin updates the lucky coin slot shown to the script.
func (e *Engine) SetLuckyCoin(slot int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars.LuckyCoin = slot
}
