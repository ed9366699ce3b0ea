package transition

// View is a presentable screen.
type View interface {
	// Prepare builds the view's resources. It may block.
	Prepare() error
	// Activate is called once the view owns the screen and input.
	Activate()
	Tick(delta float64)
	Teardown()
}

// Music is one looping music track.
type Music interface {
	Play()
	Stop()
	SetVolume(v float64)
	SetLooping(loop bool)
}

// Scored is implemented by views that come with a music track.
type Scored interface {
	Music() Music
}

// AssetUser is implemented by views that depend on named assets.
type AssetUser interface {
	Assets() []string
}

// Host owns the screen and input focus.
type Host interface {
	Focus() View
	// SetFocus routes input to v; nil detaches input.
	SetFocus(v View)
	// Show makes v the current screen.
	Show(v View)
}

// Overlay is a flat-colored rectangle covering the screen.
type Overlay interface {
	Draw(opacity float64)
	Release()
}

// Overlays creates overlays.
type Overlays interface {
	NewOverlay() Overlay
}

// Assets loads and unloads named asset sets.
type Assets interface {
	Load(names ...string) error
	Unload(names ...string)
}

// MuteState tells whether music is muted.
type MuteState interface {
	MusicMuted() bool
}
