package round

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/player"
	"github.com/MJE43/pocketbandit/internal/reel"
	"github.com/MJE43/pocketbandit/internal/rules"
)

const (
	// BaseStops is the per-reel stop increment; reel i spins for
	// (1+i)*BaseStops + velocity boundaries so the reels stop left to right.
	BaseStops = 3
	// PaylineRow is the row whose resting faces form the payline.
	PaylineRow = 1
	// DefaultSymbolHeight is the symbol height in pixels when none is set.
	DefaultSymbolHeight = 64
)

// Start describes a round that has just been started.
type Start struct {
	Round     int
	Variation string
	Bet       int
	Velocity  int
	Credit    int
}

// Outcome describes a settled round.
type Outcome struct {
	Round           int
	Variation       string
	Bet             int
	Payline         [rules.Reels]int
	Symbols         [rules.Reels]string
	Rule            int
	Win             bool
	Payout          int
	LuckyBonus      int
	Credit          int
	Highscore       int
	StreakOfLuck    int
	StreakOfBadLuck int
}

// Observer receives round events on the simulation thread.
type Observer interface {
	RoundStarted(s Start)
	ReelStopped(reel, face int)
	RoundSettled(o Outcome)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSymbolHeight sets the symbol height used by the reel actors.
func WithSymbolHeight(h int) Option {
	return func(c *Coordinator) { c.height = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observers = append(c.observers, o) }
}

// Coordinator spins the nine reel actors and settles each round exactly once
// after the last actor has come to rest.
type Coordinator struct {
	variation *rules.Variation
	player    *player.Player
	actors    [rules.Reels * reel.Rows]*reel.Actor
	controls  *Controls
	observers []Observer
	logger    *zap.Logger
	height    int

	spinning int
	active   bool
	ticking  bool
	pending  bool
	settled  int
}

// New builds a coordinator with all actors resting on the variation's
// initial faces.
func New(v *rules.Variation, p *player.Player, picker reel.Picker, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		variation: v,
		player:    p,
		logger:    zap.NewNop(),
		height:    DefaultSymbolHeight,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("round").With(zap.String("variation", v.Name))

	faces := v.InitialFaces()
	for i := range c.actors {
		cfg := reel.Config{
			Reel:         i / reel.Rows,
			Row:          i % reel.Rows,
			PaylineRow:   PaylineRow,
			SymbolHeight: c.height,
		}
		a, err := reel.New(cfg, faces[i], picker, c)
		if err != nil {
			return nil, fmt.Errorf("round: %w", err)
		}
		c.actors[i] = a
		if a.OnPayline() {
			p.Payline[cfg.Reel] = faces[i]
		}
	}
	c.controls = NewControls(p.Credit)
	return c, nil
}

// AddObserver registers o for round events.
func (c *Coordinator) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Player returns the player whose economy the coordinator drives.
func (c *Coordinator) Player() *player.Player { return c.player }

// Variation returns the rule set in play.
func (c *Coordinator) Variation() *rules.Variation { return c.variation }

// Controls returns the bet controls.
func (c *Coordinator) Controls() *Controls { return c.controls }

// Active reports whether a round is in progress.
func (c *Coordinator) Active() bool { return c.active }

// Spinning returns the number of actors still moving.
func (c *Coordinator) Spinning() int { return c.spinning }

// Settled returns the number of rounds settled by this coordinator.
func (c *Coordinator) Settled() int { return c.settled }

// Actors returns the reel actors ordered by reel, then row.
func (c *Coordinator) Actors() []*reel.Actor {
	return append([]*reel.Actor(nil), c.actors[:]...)
}

// Grid returns the faces currently shown, ordered like Actors.
func (c *Coordinator) Grid() [rules.Reels * reel.Rows]int {
	var g [rules.Reels * reel.Rows]int
	for i, a := range c.actors {
		g[i] = a.Face()
	}
	return g
}

// StartRound takes bet from the player and spins every reel. It is rejected
// while a round is in progress.
func (c *Coordinator) StartRound(bet, velocity int) error {
	if c.active {
		return fmt.Errorf("%w: round in progress", engine.ErrInvalidOperation)
	}
	for _, a := range c.actors {
		if a.State() != reel.Resting {
			return fmt.Errorf("%w: reel %d is not resting", engine.ErrInvalidOperation, a.Reel())
		}
	}
	if velocity <= 0 || c.height%velocity != 0 {
		return fmt.Errorf("%w: velocity %d does not divide symbol height %d", engine.ErrInvalidOperation, velocity, c.height)
	}
	if err := c.player.Gamble(bet); err != nil {
		return err
	}

	c.active = true
	c.pending = false
	c.controls.Lock()
	for _, a := range c.actors {
		stops := (1+a.Reel())*BaseStops + velocity
		if err := a.Spin(stops, velocity); err != nil {
			return fmt.Errorf("round: spin reel %d: %w", a.Reel(), err)
		}
	}

	start := Start{
		Round:     c.player.Round + 1,
		Variation: c.variation.Name,
		Bet:       bet,
		Velocity:  velocity,
		Credit:    c.player.Credit,
	}
	c.logger.Debug("round started", zap.Int("round", start.Round), zap.Int("bet", bet), zap.Int("velocity", velocity))
	for _, o := range c.observers {
		o.RoundStarted(start)
	}
	return nil
}

// ReelStarted implements reel.Listener.
func (c *Coordinator) ReelStarted(a *reel.Actor) {
	c.spinning++
}

// ReelStopped implements reel.Listener.
func (c *Coordinator) ReelStopped(a *reel.Actor) {
	if c.spinning > 0 {
		c.spinning--
	}
	if a.OnPayline() {
		c.player.Payline[a.Reel()] = a.Face()
		for _, o := range c.observers {
			o.ReelStopped(a.Reel(), a.Face())
		}
	}
	if c.spinning > 0 || !c.active {
		return
	}
	if c.ticking {
		c.pending = true
		return
	}
	c.settle()
}

// Tick advances every actor by one step and settles the round at most once,
// after all actors have moved.
func (c *Coordinator) Tick(delta float64) {
	c.ticking = true
	for _, a := range c.actors {
		a.Tick(delta)
	}
	c.ticking = false
	if c.pending {
		c.pending = false
		c.settle()
	}
}

func (c *Coordinator) settle() {
	if !c.active {
		return
	}
	c.active = false
	c.settled++

	p := c.player
	payline := p.Payline
	bet := p.Bet
	rule := c.variation.Match(payline)
	win := c.variation.Payout(1, payline) > 0
	award := c.variation.Payout(bet, payline)

	credited := 0
	if win {
		credited = p.Win(award)
	} else {
		p.Loose()
	}
	c.controls.Unlock(p.Credit)

	out := Outcome{
		Round:           p.Round,
		Variation:       c.variation.Name,
		Bet:             bet,
		Payline:         payline,
		Symbols:         symbolNames(c.variation, payline),
		Rule:            rule,
		Win:             win,
		Payout:          credited,
		LuckyBonus:      p.LastLuckyBonus,
		Credit:          p.Credit,
		Highscore:       p.Highscore,
		StreakOfLuck:    p.StreakOfLuck,
		StreakOfBadLuck: p.StreakOfBadLuck,
	}
	c.logger.Debug("round settled",
		zap.Int("round", out.Round),
		zap.Strings("payline", out.Symbols[:]),
		zap.Bool("win", win),
		zap.Int("payout", credited),
		zap.Int("credit", out.Credit),
	)
	for _, o := range c.observers {
		o.RoundSettled(out)
	}
}

func symbolNames(v *rules.Variation, payline [rules.Reels]int) [rules.Reels]string {
	var names [rules.Reels]string
	for i, id := range payline {
		names[i] = v.SymbolName(id)
	}
	return names
}

// BrakeAffectedReels applies the handbrake to one reel picked by how many
// actors are still spinning: the last reel when 1-3 spin, the middle reel
// for 4-6 and the first reel for 7-9. It reports whether any actor accepted.
func (c *Coordinator) BrakeAffectedReels() bool {
	if !c.active {
		return false
	}
	var target int
	switch {
	case c.spinning >= 7:
		target = 0
	case c.spinning >= 4:
		target = 1
	case c.spinning >= 1:
		target = 2
	default:
		return false
	}
	braked := false
	for _, a := range c.actors[target*reel.Rows : (target+1)*reel.Rows] {
		if a.Handbrake() {
			braked = true
		}
	}
	if braked {
		c.logger.Debug("brake applied", zap.Int("reel", target), zap.Int("spinning", c.spinning))
	}
	return braked
}
