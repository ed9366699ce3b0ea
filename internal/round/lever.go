package round

import "time"

// LeverAction is what a drag of the lever asks for.
type LeverAction int

const (
	LeverNone LeverAction = iota
	// LeverArmed means the knob passed the trigger point; the round starts
	// on release.
	LeverArmed
	// LeverBrake means the knob was pushed past the brake point while the
	// reels spin.
	LeverBrake
)

// Lever turns knob drags into round starts and brake requests. Positions are
// vertical coordinates between bottom and top.
type Lever struct {
	bottom, top  float64
	restPoint    float64
	triggerPoint float64
	brakePoint   float64
	allowBrakes  bool

	pos       float64
	triggered bool
	stopped   bool
	start     time.Time
	pull      time.Duration
}

// NewLever returns a lever resting at 88% of its travel.
func NewLever(bottom, top float64, allowBrakes bool) *Lever {
	length := top - bottom
	l := &Lever{
		bottom:       bottom,
		top:          top,
		restPoint:    bottom + length*0.88,
		triggerPoint: bottom + length*0.20,
		brakePoint:   bottom + length*0.90,
		allowBrakes:  allowBrakes,
	}
	l.pos = l.restPoint
	return l
}

// VelocityFor maps the time it took to pull the lever to a reel velocity.
func VelocityFor(pull time.Duration) int {
	switch {
	case pull < 200*time.Millisecond:
		return 8
	case pull < 500*time.Millisecond:
		return 4
	default:
		return 2
	}
}

// Position returns the knob position.
func (l *Lever) Position() float64 { return l.pos }

// RestPoint returns the position the knob returns to on release.
func (l *Lever) RestPoint() float64 { return l.restPoint }

// TriggerPoint returns the position below which a pull arms a round.
func (l *Lever) TriggerPoint() float64 { return l.triggerPoint }

// BrakePoint returns the position above which a push brakes the reels.
func (l *Lever) BrakePoint() float64 { return l.brakePoint }

// DragStart begins a gesture.
func (l *Lever) DragStart(now time.Time) {
	l.start = now
}

// Drag moves the knob to y.
func (l *Lever) Drag(y float64, spinning bool, now time.Time) LeverAction {
	if !l.triggered && y > l.bottom && y < l.top {
		l.pos = y
	}
	if l.triggered && y > l.bottom && y < l.triggerPoint {
		l.pos = y
	}
	if l.pos < l.triggerPoint && !l.triggered && !spinning {
		l.triggered = true
		l.pull = now.Sub(l.start)
		return LeverArmed
	}
	if l.allowBrakes && l.pos > l.brakePoint && !l.stopped && spinning {
		l.stopped = true
		return LeverBrake
	}
	return LeverNone
}

// DragStop ends the gesture and returns the knob to rest. When the lever was
// armed it returns the velocity for the new round and true.
func (l *Lever) DragStop() (int, bool) {
	l.pos = l.restPoint
	l.stopped = false
	if !l.triggered {
		return 0, false
	}
	l.triggered = false
	return VelocityFor(l.pull), true
}
