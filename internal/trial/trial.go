// Package trial counts launches to decide when a trial period is over. It
// is a reminder aid, not a licensing mechanism.
package trial

import (
	"time"

	"github.com/MJE43/pocketbandit/internal/prefs"
)

const (
	KeyLaunches    = "TrialPeriod.launches"
	KeyFirstLaunch = "TrialPeriod.firstLaunch"
	KeyState       = "TrialPeriod.state"
)

// State is a free-form outcome recorded by the caller. It is never
// evaluated by Period.
type State int

const (
	Unknown    State = 0
	Positive   State = 1
	Negative   State = 2
	InProgress State = 4
	Ended      State = 8

	EndedPositively = Ended | Positive
	EndedNegatively = Ended | Negative
)

// Period tracks launches in preferences.
type Period struct {
	prefs       prefs.Preferences
	minLaunches int
	minTime     time.Duration
}

// Option configures a Period.
type Option func(*Period)

// WithMinLaunches sets how many launches must happen before the trial is
// over.
func WithMinLaunches(n int) Option { return func(p *Period) { p.minLaunches = n } }

// WithMinTime sets how long after the first launch the trial lasts.
func WithMinTime(d time.Duration) Option { return func(p *Period) { p.minTime = d } }

// New returns a period of 10 launches and three days unless overridden.
func New(p prefs.Preferences, opts ...Option) *Period {
	t := &Period{prefs: p, minLaunches: 10, minTime: 3 * 24 * time.Hour}
	for _, o := range opts {
		o(t)
	}
	return t
}

// RecordLaunch counts one launch at now.
func (t *Period) RecordLaunch(now time.Time) {
	if t.prefs.Int(KeyFirstLaunch, 0) == 0 {
		t.prefs.SetInt(KeyFirstLaunch, int(now.Unix()))
	}
	t.prefs.SetInt(KeyLaunches, t.prefs.Int(KeyLaunches, 0)+1)
}

// Launches returns the recorded launch count.
func (t *Period) Launches() int { return t.prefs.Int(KeyLaunches, 0) }

// IsOver reports whether both the launch count and the time since the first
// launch have reached their minimums.
func (t *Period) IsOver(now time.Time) bool {
	first := t.prefs.Int(KeyFirstLaunch, 0)
	if first == 0 {
		return false
	}
	elapsed := now.Sub(time.Unix(int64(first), 0))
	return t.Launches() >= t.minLaunches && elapsed >= t.minTime
}

// State returns the recorded state.
func (t *Period) State() State { return State(t.prefs.Int(KeyState, int(Unknown))) }

// SetState records s.
func (t *Period) SetState(s State) { t.prefs.SetInt(KeyState, int(s)) }

// Reset starts the trial over.
func (t *Period) Reset() {
	t.prefs.SetInt(KeyLaunches, 0)
	t.prefs.SetInt(KeyFirstLaunch, 0)
	t.prefs.SetInt(KeyState, int(Unknown))
}
