package audio

import (
	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/round"
)

// Effect names a sound effect.
type Effect string

const (
	EffectTrigger  Effect = "trigger"
	EffectWin      Effect = "win"
	EffectEject    Effect = "eject"
	EffectReelStop Effect = "reelstop"
)

// Effects plays sound effects for round events unless sound is muted.
type Effects struct {
	mute   *Manager
	plays  map[Effect]int
	logger *zap.Logger
}

// NewEffects returns an effect board bound to mute.
func NewEffects(mute *Manager, logger *zap.Logger) *Effects {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Effects{mute: mute, plays: make(map[Effect]int), logger: logger.Named("sfx")}
}

// Play triggers e. It reports whether the effect was audible.
func (e *Effects) Play(effect Effect) bool {
	if e.mute.SoundMuted() {
		return false
	}
	e.plays[effect]++
	e.logger.Debug("effect", zap.String("name", string(effect)))
	return true
}

// Plays returns how many times effect was played.
func (e *Effects) Plays(effect Effect) int { return e.plays[effect] }

func (e *Effects) RoundStarted(s round.Start) {
	if s.Bet > 0 {
		e.Play(EffectEject)
	}
}

func (e *Effects) ReelStopped(reel, face int) { e.Play(EffectReelStop) }

func (e *Effects) RoundSettled(o round.Outcome) {
	if o.Payout > 0 {
		e.Play(EffectWin)
	}
}
