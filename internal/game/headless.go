package game

import (
	"fmt"
	"sync"

	"github.com/MJE43/pocketbandit/internal/transition"
)

// Screen is a headless transition.Host. It remembers which view is shown
// and which one has input focus.
type Screen struct {
	current transition.View
	focus   transition.View
}

func (s *Screen) Focus() transition.View { return s.focus }
func (s *Screen) SetFocus(v transition.View) { s.focus = v }
func (s *Screen) Show(v transition.View) { s.current = v }
func (s *Screen) Current() transition.View { return s.current }

// Overlay is a headless overlay remembering the last drawn opacity.
type Overlay struct {
	Opacity  float64
	Draws    int
	Released bool
}

func (o *Overlay) Draw(opacity float64) {
	o.Opacity = opacity
	o.Draws++
}

func (o *Overlay) Release() { o.Released = true }

// Overlays hands out headless overlays and keeps the last one.
type Overlays struct {
	Last *Overlay
}

func (f *Overlays) NewOverlay() transition.Overlay {
	f.Last = &Overlay{}
	return f.Last
}

// AssetCache is a headless asset manager. It tracks which named sets are
// loaded. Names marked missing fail to load.
type AssetCache struct {
	mu      sync.Mutex
	missing map[string]bool
	loaded  map[string]bool
}

// NewAssetCache returns an empty cache.
func NewAssetCache() *AssetCache {
	return &AssetCache{missing: make(map[string]bool), loaded: make(map[string]bool)}
}

// SetMissing makes loads of name fail.
func (c *AssetCache) SetMissing(name string, missing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missing[name] = missing
}

func (c *AssetCache) Load(names ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		if c.missing[n] {
			return fmt.Errorf("asset %q not found", n)
		}
	}
	for _, n := range names {
		c.loaded[n] = true
	}
	return nil
}

func (c *AssetCache) Unload(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		delete(c.loaded, n)
	}
}

// Loaded reports whether name is currently loaded.
func (c *AssetCache) Loaded(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[name]
}
