package audio

import (
	"github.com/MJE43/pocketbandit/internal/prefs"
)

// Listener is notified whenever a mute flag changes. Implementations must be
// comparable (typically pointers) since the list is de-duplicated by
// identity.
type Listener interface {
	MuteChanged(m *Manager)
}

// Manager keeps the music and sound mute flags and tells its listeners when
// they change. The flags are persisted through prefs.
type Manager struct {
	music     bool
	sound     bool
	listeners []Listener
	prefs     prefs.Preferences
}

// NewManager reads the persisted flags from p.
func NewManager(p prefs.Preferences) *Manager {
	return &Manager{
		music: p.Bool(prefs.KeyMusicMuted, false),
		sound: p.Bool(prefs.KeySoundMuted, false),
		prefs: p,
	}
}

// Add registers l. Adding the same listener twice has no effect.
func (m *Manager) Add(l Listener) {
	for _, existing := range m.listeners {
		if existing == l {
			return
		}
	}
	m.listeners = append(m.listeners, l)
}

// Remove unregisters l.
func (m *Manager) Remove(l Listener) {
	for i, existing := range m.listeners {
		if existing == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

// MusicMuted reports whether music is muted.
func (m *Manager) MusicMuted() bool { return m.music }

// SoundMuted reports whether sound effects are muted.
func (m *Manager) SoundMuted() bool { return m.sound }

// SetMusicMuted changes the music flag.
func (m *Manager) SetMusicMuted(muted bool) {
	if m.music == muted {
		return
	}
	m.music = muted
	m.prefs.SetBool(prefs.KeyMusicMuted, muted)
	m.notify()
}

// SetSoundMuted changes the sound flag.
func (m *Manager) SetSoundMuted(muted bool) {
	if m.sound == muted {
		return
	}
	m.sound = muted
	m.prefs.SetBool(prefs.KeySoundMuted, muted)
	m.notify()
}

func (m *Manager) notify() {
	// Copy so listeners may remove themselves while being notified.
	ls := append([]Listener(nil), m.listeners...)
	for _, l := range ls {
		l.MuteChanged(m)
	}
}
