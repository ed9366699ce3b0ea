package transition

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/engine"
)

// State is the phase of a cross-fade.
type State int

const (
	Idle State = iota
	FadeOut
	Midpoint
	SkipFrame
	FadeIn
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FadeOut:
		return "fade-out"
	case Midpoint:
		return "midpoint"
	case SkipFrame:
		return "skip-frame"
	case FadeIn:
		return "fade-in"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller cross-fades from one view to another through an opaque
// overlay. The arriving view is built at the midpoint, while the overlay
// hides the screen.
type Controller struct {
	host     Host
	overlays Overlays
	assets   Assets
	mute     MuteState
	logger   *zap.Logger

	state    State
	from, to View
	focus    View
	duration float64
	elapsed  float64
	overlay  Overlay
	err      error
}

// NewController returns an idle controller. assets and mute may be nil.
func NewController(host Host, overlays Overlays, assets Assets, mute MuteState, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		host:     host,
		overlays: overlays,
		assets:   assets,
		mute:     mute,
		logger:   logger.Named("transition"),
	}
}

// State returns the current phase.
func (c *Controller) State() State { return c.state }

// Active reports whether a transition is in progress.
func (c *Controller) Active() bool {
	return c.state != Idle && c.state != Done
}

// Err returns the error that aborted the last transition, if any.
func (c *Controller) Err() error { return c.err }

// Begin starts fading from one view to another over duration seconds per
// half. It is rejected while another transition is running.
func (c *Controller) Begin(from, to View, duration float64) error {
	if c.Active() {
		return fmt.Errorf("%w: transition already in progress", engine.ErrInvalidOperation)
	}
	if to == nil {
		return fmt.Errorf("%w: no target view", engine.ErrInvalidOperation)
	}
	c.from, c.to = from, to
	c.duration = duration
	c.elapsed = 0
	c.err = nil
	c.overlay = c.overlays.NewOverlay()
	c.focus = c.host.Focus()
	c.host.SetFocus(nil)
	c.state = FadeOut
	c.logger.Debug("transition started", zap.Float64("duration", duration))
	return nil
}

func (c *Controller) fade(delta float64) float64 {
	c.elapsed += delta
	if c.duration <= 0 || c.elapsed >= c.duration {
		return 1
	}
	return c.elapsed / c.duration
}

// Tick advances the transition by delta seconds.
func (c *Controller) Tick(delta float64) {
	switch c.state {
	case FadeOut:
		p := c.fade(delta)
		setVolume(c.from, 1-p)
		if c.from != nil {
			c.from.Tick(delta)
		}
		c.overlay.Draw(p)
		if p >= 1 {
			c.state = Midpoint
		}

	case Midpoint:
		c.overlay.Draw(1)
		c.midpoint()

	case SkipFrame:
		c.overlay.Draw(1)
		c.state = FadeIn

	case FadeIn:
		p := c.fade(delta)
		setVolume(c.to, p)
		c.to.Tick(delta)
		c.overlay.Draw(1 - p)
		if p >= 1 {
			c.finish()
		}
	}
}

func (c *Controller) midpoint() {
	c.elapsed = 0
	if m := music(c.from); m != nil {
		m.Stop()
	}
	if c.assets != nil {
		if names := assetNames(c.from); len(names) > 0 {
			c.assets.Unload(names...)
		}
		if names := assetNames(c.to); len(names) > 0 {
			if err := c.assets.Load(names...); err != nil {
				c.abort(fmt.Errorf("transition: load assets: %w", err))
				return
			}
		}
	}
	if err := c.to.Prepare(); err != nil {
		c.abort(fmt.Errorf("transition: prepare view: %w", err))
		return
	}
	if m := music(c.to); m != nil {
		m.SetLooping(true)
		m.SetVolume(0)
		if c.mute == nil || !c.mute.MusicMuted() {
			m.Play()
		}
	}
	c.state = SkipFrame
}

// abort gives the screen back to the departing view.
func (c *Controller) abort(err error) {
	c.err = err
	c.logger.Error("transition aborted", zap.Error(err))
	if c.from != nil {
		if c.assets != nil {
			if names := assetNames(c.from); len(names) > 0 {
				if lerr := c.assets.Load(names...); lerr != nil {
					c.logger.Warn("reload departing assets", zap.Error(lerr))
				}
			}
		}
		c.host.Show(c.from)
	}
	c.host.SetFocus(c.focus)
	c.release()
}

func (c *Controller) finish() {
	c.host.Show(c.to)
	c.host.SetFocus(c.to)
	c.to.Activate()
	if c.from != nil {
		c.from.Teardown()
	}
	c.release()
	c.logger.Debug("transition finished")
}

func (c *Controller) release() {
	if c.overlay != nil {
		c.overlay.Release()
	}
	c.overlay = nil
	c.from, c.to, c.focus = nil, nil, nil
	c.state = Done
}

func music(v View) Music {
	if s, ok := v.(Scored); ok {
		return s.Music()
	}
	return nil
}

func setVolume(v View, vol float64) {
	if m := music(v); m != nil {
		m.SetVolume(vol)
	}
}

func assetNames(v View) []string {
	if a, ok := v.(AssetUser); ok {
		return a.Assets()
	}
	return nil
}
