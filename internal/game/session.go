// Package game runs the machine headless: views for the menu and the
// gamble screen, a fixed-step loop and an autoplay session tying them
// together.
package game

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/audio"
	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/round"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/scripting"
	"github.com/MJE43/pocketbandit/internal/stats"
	"github.com/MJE43/pocketbandit/internal/transition"
)

// Phase is where the session is.
type Phase string

const (
	PhaseMenu     Phase = "menu"
	PhaseEntering Phase = "entering"
	PhasePlaying  Phase = "playing"
	PhaseLeaving  Phase = "leaving"
	PhaseFinished Phase = "finished"
	PhaseFailed   Phase = "failed"
)

// Snapshot is the published state of a session. It is safe to hand to
// other goroutines.
type Snapshot struct {
	Phase      Phase              `json:"phase"`
	Variation  string             `json:"variation"`
	Played     int                `json:"played"`
	Target     int                `json:"target"`
	Credit     int                `json:"credit"`
	Highscore  int                `json:"highscore"`
	LuckyCoin  int                `json:"luckyCoin"`
	Grid       [9]int             `json:"grid"`
	Last       *round.Outcome     `json:"last,omitempty"`
	Stats      stats.Statistics   `json:"stats"`
	Script     scripting.Snapshot `json:"script"`
	Transition string             `json:"transition"`
	Error      string             `json:"error,omitempty"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// Config configures a Session.
type Config struct {
	Catalog *rules.Catalog
	Prefs   prefs.Preferences
	Source  engine.Source
	Mute    *audio.Manager

	// Rounds is the number of rounds to autoplay; zero plays until the
	// script stops or the loop is cancelled.
	Rounds            int
	TransitionSeconds float64
	SymbolHeight      int
	Script            string

	// Observers receive every round event after the session's own.
	Observers []round.Observer
	Logger    *zap.Logger
}

// Session starts on the menu, cross-fades to the machine, autoplays rounds
// with the strategy script and fades back to the menu when done. Tick must
// only be called from the loop goroutine.
type Session struct {
	screen     *Screen
	overlays   *Overlays
	assets     *AssetCache
	controller *transition.Controller
	menu       *MenuView
	gamble     *GambleView
	script     *scripting.Engine
	tracker    *stats.Tracker
	logger     *zap.Logger

	rounds   int
	seconds  float64
	source   string
	phase    Phase
	clock    time.Time
	decision scripting.Decision
	braked   bool
	played   int
	last     *round.Outcome
	err      error

	mu   sync.Mutex
	snap Snapshot
}

// NewSession builds the views and shows the menu.
func NewSession(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Catalog == nil || cfg.Prefs == nil || cfg.Source == nil || cfg.Mute == nil {
		return nil, fmt.Errorf("game: incomplete session config")
	}
	script := cfg.Script
	if script == "" {
		script = scripting.DefaultScript
	}

	s := &Session{
		screen:   &Screen{},
		overlays: &Overlays{},
		assets:   NewAssetCache(),
		script:   scripting.NewEngine(logger),
		tracker:  stats.NewTracker(500),
		logger:   logger.Named("session"),
		rounds:   cfg.Rounds,
		seconds:  cfg.TransitionSeconds,
		source:   script,
		phase:    PhaseMenu,
		clock:    time.Unix(0, 0),
	}
	s.controller = transition.NewController(s.screen, s.overlays, s.assets, cfg.Mute, logger)
	s.menu = NewMenuView(cfg.Catalog, cfg.Mute, logger)

	observers := []round.Observer{s.tracker, s.script, s}
	observers = append(observers, cfg.Observers...)
	s.gamble = NewGambleView(GambleConfig{
		Catalog:      cfg.Catalog,
		Prefs:        cfg.Prefs,
		Source:       cfg.Source,
		Mute:         cfg.Mute,
		SymbolHeight: cfg.SymbolHeight,
		Observers:    observers,
		Logger:       logger,
	})

	if err := s.assets.Load(s.menu.Assets()...); err != nil {
		return nil, err
	}
	if err := s.menu.Prepare(); err != nil {
		return nil, err
	}
	s.screen.Show(s.menu)
	s.screen.SetFocus(s.menu)
	s.menu.Activate()
	if !cfg.Mute.MusicMuted() {
		s.menu.Track().SetLooping(true)
		s.menu.Track().Play()
	}
	s.publish()
	return s, nil
}

// Screen returns the headless host.
func (s *Session) Screen() *Screen { return s.screen }

// Assets returns the headless asset cache.
func (s *Session) Assets() *AssetCache { return s.assets }

// Menu returns the menu view.
func (s *Session) Menu() *MenuView { return s.menu }

// Gamble returns the machine view.
func (s *Session) Gamble() *GambleView { return s.gamble }

// Tracker returns the session statistics.
func (s *Session) Tracker() *stats.Tracker { return s.tracker }

// Script returns the autoplay engine.
func (s *Session) Script() *scripting.Engine { return s.script }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Err returns the error that failed the session.
func (s *Session) Err() error { return s.err }

// Done reports whether the session has finished or failed.
func (s *Session) Done() bool {
	return s.phase == PhaseFinished || s.phase == PhaseFailed
}

// Tick advances the session by delta seconds.
func (s *Session) Tick(delta float64) {
	s.clock = s.clock.Add(time.Duration(delta * float64(time.Second)))

	switch s.phase {
	case PhaseMenu:
		s.menu.Tick(delta)
		if err := s.controller.Begin(s.menu, s.gamble, s.seconds); err != nil {
			s.fail(err)
			return
		}
		s.setPhase(PhaseEntering)

	case PhaseEntering:
		s.controller.Tick(delta)
		if s.controller.Active() {
			return
		}
		if err := s.controller.Err(); err != nil {
			s.fail(err)
			return
		}
		if err := s.script.Start(s.source, s.gamble.Player()); err != nil {
			s.fail(err)
			return
		}
		s.setPhase(PhasePlaying)

	case PhasePlaying:
		s.gamble.Tick(delta)
		s.play()

	case PhaseLeaving:
		s.controller.Tick(delta)
		if s.controller.Active() {
			return
		}
		if err := s.controller.Err(); err != nil {
			s.fail(err)
			return
		}
		s.setPhase(PhaseFinished)
	}
}

func (s *Session) play() {
	coord := s.gamble.Coordinator()
	if coord.Active() {
		// Reels only accept the brake on a boundary, so keep pushing until one does.
		if s.decision.Brake && !s.braked && coord.Spinning() > 0 {
			s.braked = s.gamble.Brake(s.clock)
		}
		return
	}

	if s.rounds > 0 && s.played >= s.rounds {
		s.leave()
		return
	}

	s.script.SetLuckyCoin(s.gamble.Player().LuckyCoinIndex)
	d, ok, err := s.script.Next()
	if err != nil {
		s.logger.Warn("script failed, leaving machine", zap.Error(err))
		s.err = err
	}
	if !ok {
		s.leave()
		return
	}
	s.decision = d
	s.braked = false
	if err := s.gamble.Pull(d.Bet, d.PullTime, s.clock); err != nil {
		s.fail(err)
	}
}

func (s *Session) leave() {
	if s.script.State() == scripting.StateRunning {
		_ = s.script.Stop()
	}
	if err := s.controller.Begin(s.gamble, s.menu, s.seconds); err != nil {
		s.fail(err)
		return
	}
	s.setPhase(PhaseLeaving)
}

func (s *Session) fail(err error) {
	s.err = err
	s.logger.Error("session failed", zap.Error(err), zap.String("phase", string(s.phase)))
	s.setPhase(PhaseFailed)
}

func (s *Session) setPhase(p Phase) {
	s.logger.Debug("phase", zap.String("from", string(s.phase)), zap.String("to", string(p)))
	s.phase = p
	s.publish()
}

func (s *Session) RoundStarted(round.Start) {}

func (s *Session) ReelStopped(int, int) {}

// RoundSettled counts the round and publishes a fresh snapshot.
func (s *Session) RoundSettled(o round.Outcome) {
	s.played++
	out := o
	s.last = &out
	s.publish()
}

func (s *Session) publish() {
	snap := Snapshot{
		Phase:      s.phase,
		Played:     s.played,
		Target:     s.rounds,
		Stats:      s.tracker.Snapshot(),
		Script:     s.script.Snapshot(),
		Transition: s.controller.State().String(),
		UpdatedAt:  time.Now().UTC(),
	}
	if s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	if p := s.gamble.Player(); p != nil {
		snap.Variation = p.Variation().Name
		snap.Credit = p.Credit
		snap.Highscore = p.Highscore
		snap.LuckyCoin = p.LuckyCoinIndex
	}
	if c := s.gamble.Coordinator(); c != nil {
		snap.Grid = c.Grid()
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns the last published state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Totals returns the amounts played so far.
func (s *Session) Totals() (rounds, wagered, returned int) {
	st := s.tracker.Snapshot()
	return st.Rounds, st.Wagered, st.Returned
}
