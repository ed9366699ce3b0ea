package game

import (
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/audio"
	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/player"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/round"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/transition"
)

// Lever travel in pixels.
const (
	leverBottom = 0
	leverTop    = 480
)

// MenuView is the title screen where the rule file is chosen.
type MenuView struct {
	catalog *rules.Catalog
	track   *audio.Track
	active  bool
	logger  *zap.Logger
}

// NewMenuView returns the menu for catalog.
func NewMenuView(catalog *rules.Catalog, mute *audio.Manager, logger *zap.Logger) *MenuView {
	if logger == nil {
		logger = zap.NewNop()
	}
	track := audio.NewTrack("menu", logger)
	mute.Add(track)
	return &MenuView{catalog: catalog, track: track, logger: logger.Named("menu")}
}

// Prepare checks that every rule file loads.
func (m *MenuView) Prepare() error {
	if _, err := m.catalog.LoadAll(); err != nil {
		return err
	}
	return nil
}

func (m *MenuView) Activate() { m.active = true }
func (m *MenuView) Tick(delta float64) {}
func (m *MenuView) Teardown() { m.active = false }

// Active reports whether the menu owns the screen.
func (m *MenuView) Active() bool { return m.active }

func (m *MenuView) Music() transition.Music { return m.track }

// Track returns the menu music.
func (m *MenuView) Track() *audio.Track { return m.track }

func (m *MenuView) Assets() []string { return []string{"menu"} }

// Next selects the following rule file and returns its name.
func (m *MenuView) Next() string { return m.catalog.Next() }

// Previous selects the preceding rule file and returns its name.
func (m *MenuView) Previous() string { return m.catalog.Previous() }

// GambleView is the machine screen. Its player, coordinator and lever are
// built in Prepare for the rule file selected at that moment.
type GambleView struct {
	catalog   *rules.Catalog
	prefs     prefs.Preferences
	source    engine.Source
	effects   *audio.Effects
	track     *audio.Track
	height    int
	observers []round.Observer
	logger    *zap.Logger

	variation *rules.Variation
	player    *player.Player
	coord     *round.Coordinator
	lever     *round.Lever
	active    bool
}

// GambleConfig holds the collaborators of a GambleView.
type GambleConfig struct {
	Catalog      *rules.Catalog
	Prefs        prefs.Preferences
	Source       engine.Source
	Mute         *audio.Manager
	SymbolHeight int
	Observers    []round.Observer
	Logger       *zap.Logger
}

// NewGambleView returns an unprepared machine screen.
func NewGambleView(cfg GambleConfig) *GambleView {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	height := cfg.SymbolHeight
	if height <= 0 {
		height = round.DefaultSymbolHeight
	}
	track := audio.NewTrack("gamble", logger)
	cfg.Mute.Add(track)
	return &GambleView{
		catalog:   cfg.Catalog,
		prefs:     cfg.Prefs,
		source:    cfg.Source,
		effects:   audio.NewEffects(cfg.Mute, logger),
		track:     track,
		height:    height,
		observers: cfg.Observers,
		logger:    logger.Named("gamble"),
	}
}

// Prepare loads the selected rule file and builds the machine.
func (g *GambleView) Prepare() error {
	v, err := g.catalog.Load()
	if err != nil {
		return err
	}
	p := player.New(v, g.prefs, g.source, g.logger)
	opts := []round.Option{
		round.WithSymbolHeight(g.height),
		round.WithLogger(g.logger),
		round.WithObserver(g.effects),
	}
	for _, o := range g.observers {
		opts = append(opts, round.WithObserver(o))
	}
	coord, err := round.New(v, p, rules.NewPicker(v, g.source), opts...)
	if err != nil {
		return fmt.Errorf("game: build machine: %w", err)
	}
	g.variation, g.player, g.coord = v, p, coord
	g.lever = round.NewLever(leverBottom, leverTop, true)
	g.logger.Info("machine ready",
		zap.String("variation", v.Name),
		zap.Int("credit", p.Credit),
		zap.Int("highscore", p.Highscore),
	)
	return nil
}

func (g *GambleView) Activate() { g.active = true }

func (g *GambleView) Tick(delta float64) {
	if g.coord != nil {
		g.coord.Tick(delta)
	}
}

// Teardown drops the machine. The player stays readable.
func (g *GambleView) Teardown() {
	g.active = false
	g.coord = nil
	g.lever = nil
}

func (g *GambleView) Music() transition.Music { return g.track }

func (g *GambleView) Assets() []string {
	name := g.catalog.Current()
	return []string{"gamble", "machine/" + prefs.NormalizeName(strings.TrimSuffix(name, path.Ext(name)))}
}

// Active reports whether the machine owns the screen.
func (g *GambleView) Active() bool { return g.active }

func (g *GambleView) Variation() *rules.Variation { return g.variation }
func (g *GambleView) Player() *player.Player { return g.player }
func (g *GambleView) Coordinator() *round.Coordinator { return g.coord }
func (g *GambleView) Effects() *audio.Effects { return g.effects }

// Pull sets the bet and pulls the lever down over pull. The round starts on
// release with the velocity the pull time maps to.
func (g *GambleView) Pull(bet int, pull time.Duration, now time.Time) error {
	if g.coord == nil {
		return fmt.Errorf("%w: machine is not prepared", engine.ErrInvalidOperation)
	}
	bet = g.coord.Controls().SetBet(bet)

	g.lever.DragStart(now)
	if g.lever.Drag(g.lever.TriggerPoint()-1, g.coord.Active(), now.Add(pull)) == round.LeverArmed {
		g.effects.Play(audio.EffectTrigger)
	}
	velocity, armed := g.lever.DragStop()
	if !armed {
		return fmt.Errorf("%w: lever did not arm", engine.ErrInvalidOperation)
	}
	return g.coord.StartRound(bet, velocity)
}

// Brake pushes the lever past the brake point. It reports whether a reel
// accepted the handbrake.
func (g *GambleView) Brake(now time.Time) bool {
	if g.coord == nil {
		return false
	}
	g.lever.DragStart(now)
	action := g.lever.Drag(g.lever.BrakePoint()+1, g.coord.Spinning() > 0, now)
	g.lever.DragStop()
	if action != round.LeverBrake {
		return false
	}
	return g.coord.BrakeAffectedReels()
}
