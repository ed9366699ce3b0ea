package reel

import (
	"fmt"

	"github.com/MJE43/pocketbandit/internal/engine"
)

// Rows is the number of visible symbol cells per reel.
const Rows = 3

// State is the mechanical state of an Actor.
type State int

const (
	Resting State = iota
	Spinning
	Braking
)

func (s State) String() string {
	switch s {
	case Resting:
		return "resting"
	case Spinning:
		return "spinning"
	case Braking:
		return "braking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Picker supplies the next face scrolling into view.
type Picker interface {
	Pick(reel int) int
}

// Listener is told when an actor starts and stops moving.
type Listener interface {
	ReelStarted(a *Actor)
	ReelStopped(a *Actor)
}

// Config places an actor on the machine.
type Config struct {
	Reel         int
	Row          int
	PaylineRow   int
	SymbolHeight int
}

// Actor is one symbol cell travelling down a reel. Its column position y runs
// from 3*SymbolHeight down to 0 and then wraps with a freshly picked face.
type Actor struct {
	reel       int
	paylineRow int
	height     int

	face      int
	y         int
	remaining int
	velocity  int
	brake     bool

	picker   Picker
	listener Listener
}

// New creates a resting actor showing face.
func New(cfg Config, face int, picker Picker, listener Listener) (*Actor, error) {
	if cfg.SymbolHeight <= 0 {
		return nil, fmt.Errorf("reel: symbol height must be positive, got %d", cfg.SymbolHeight)
	}
	if cfg.Row < 0 || cfg.Row >= Rows || cfg.PaylineRow < 0 || cfg.PaylineRow >= Rows {
		return nil, fmt.Errorf("reel: row %d / payline row %d outside [0,%d)", cfg.Row, cfg.PaylineRow, Rows)
	}
	return &Actor{
		reel:       cfg.Reel,
		paylineRow: cfg.PaylineRow,
		height:     cfg.SymbolHeight,
		face:       face,
		y:          cfg.Row * cfg.SymbolHeight,
		picker:     picker,
		listener:   listener,
	}, nil
}

// Reel returns the reel index the actor belongs to.
func (a *Actor) Reel() int { return a.reel }

// Face returns the symbol currently shown.
func (a *Actor) Face() int { return a.face }

// Remaining returns the number of boundaries left before the actor rests.
func (a *Actor) Remaining() int { return a.remaining }

// Offset returns the position within the current symbol height.
func (a *Actor) Offset() int { return a.y % a.height }

// Position returns the column position in [0, 3*SymbolHeight].
func (a *Actor) Position() int { return a.y }

// Row returns the row index the actor occupies. It is only meaningful on a
// boundary.
func (a *Actor) Row() int { return (a.y / a.height) % Rows }

// OnBoundary reports whether the actor sits exactly on a symbol boundary.
func (a *Actor) OnBoundary() bool { return a.y%a.height == 0 }

// OnPayline reports whether the actor rests in the payline row.
func (a *Actor) OnPayline() bool {
	return a.OnBoundary() && a.Row() == a.paylineRow
}

// State returns the mechanical state.
func (a *Actor) State() State {
	switch {
	case a.remaining <= 0:
		return Resting
	case a.brake:
		return Braking
	default:
		return Spinning
	}
}

// Spin sets the actor in motion for stops boundaries at velocity pixels per
// tick.
func (a *Actor) Spin(stops, velocity int) error {
	if stops <= 0 {
		return fmt.Errorf("%w: stop count %d", engine.ErrInvalidOperation, stops)
	}
	if a.remaining > 0 {
		return fmt.Errorf("%w: reel %d is still moving", engine.ErrInvalidOperation, a.reel)
	}
	if velocity <= 0 || a.height%velocity != 0 {
		return fmt.Errorf("%w: velocity %d does not divide symbol height %d", engine.ErrInvalidOperation, velocity, a.height)
	}
	a.remaining = stops
	a.velocity = velocity
	a.brake = false
	if a.listener != nil {
		a.listener.ReelStarted(a)
	}
	return nil
}

// Handbrake asks the actor to stop at its current boundary. It fails while
// resting or between boundaries.
func (a *Actor) Handbrake() bool {
	if a.remaining <= 0 || !a.OnBoundary() {
		return false
	}
	a.brake = true
	return true
}

// Tick advances the actor by one simulation step. Movement is per tick, so
// delta is not used.
func (a *Actor) Tick(delta float64) {
	if a.remaining <= 0 {
		return
	}

	if a.brake && a.OnBoundary() {
		a.remaining = 0
		a.rest()
		return
	}

	if a.y == 0 {
		a.y = Rows * a.height
		a.face = a.picker.Pick(a.reel)
	}
	a.y -= a.velocity

	if a.OnBoundary() {
		if a.brake {
			a.remaining = 0
		} else {
			a.remaining--
		}
	}
	if a.remaining == 0 {
		a.rest()
	}
}

func (a *Actor) rest() {
	a.brake = false
	if a.listener != nil {
		a.listener.ReelStopped(a)
	}
}
