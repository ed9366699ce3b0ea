package audio

import "go.uber.org/zap"

// Track is a headless music track. It keeps the playback state a real
// device would have and follows the music mute flag.
type Track struct {
	Name string

	playing bool
	volume  float64
	looping bool
	logger  *zap.Logger
}

// NewTrack returns a stopped track.
func NewTrack(name string, logger *zap.Logger) *Track {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Track{Name: name, volume: 1, logger: logger.Named("music").With(zap.String("track", name))}
}

func (t *Track) Play() {
	if !t.playing {
		t.logger.Debug("play")
	}
	t.playing = true
}

func (t *Track) Stop() {
	if t.playing {
		t.logger.Debug("stop")
	}
	t.playing = false
}

func (t *Track) SetVolume(v float64) {
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	t.volume = v
}

func (t *Track) SetLooping(loop bool) { t.looping = loop }

// Playing reports whether the track is playing.
func (t *Track) Playing() bool { return t.playing }

// Volume returns the current volume in [0, 1].
func (t *Track) Volume() float64 { return t.volume }

// Looping reports whether the track loops.
func (t *Track) Looping() bool { return t.looping }

// MuteChanged stops the track when music gets muted.
func (t *Track) MuteChanged(m *Manager) {
	if m.MusicMuted() {
		t.Stop()
	}
}
