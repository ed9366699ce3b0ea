package prefs

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Preferences is the durable per-installation key/value handle.
type Preferences interface {
	Int(key string, def int) int
	SetInt(key string, v int)
	Bool(key string, def bool) bool
	SetBool(key string, v bool)
	String(key, def string) string
	SetString(key, v string)
	Flush(ctx context.Context) error
}

// Backend persists preference values.
type Backend interface {
	LoadPreferences(ctx context.Context) (map[string]string, error)
	SavePreferences(ctx context.Context, values map[string]string) error
}

// PersistenceError reports keys that could not be written. They stay dirty
// and are retried on the next flush.
type PersistenceError struct {
	Keys []string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("prefs: flush %s: %v", strings.Join(e.Keys, ","), e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Cache keeps preferences in memory and writes changed keys to a Backend on
// Flush. Setters never touch the backend.
type Cache struct {
	mu      sync.Mutex
	values  map[string]string
	dirty   map[string]struct{}
	backend Backend
	logger  *zap.Logger
}

// New loads all stored preferences from backend.
func New(ctx context.Context, backend Backend, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	values, err := backend.LoadPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("prefs: load: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return &Cache{
		values:  values,
		dirty:   make(map[string]struct{}),
		backend: backend,
		logger:  logger.Named("prefs"),
	}, nil
}

// NewMemory returns a Cache without a backend. Flush only clears the dirty set.
func NewMemory() *Cache {
	return &Cache{
		values: make(map[string]string),
		dirty:  make(map[string]struct{}),
		logger: zap.NewNop(),
	}
}

func (c *Cache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Cache) set(key, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.values[key]; ok && old == v {
		return
	}
	c.values[key] = v
	c.dirty[key] = struct{}{}
}

func (c *Cache) Int(key string, def int) int {
	v, ok := c.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (c *Cache) SetInt(key string, v int) { c.set(key, strconv.Itoa(v)) }

func (c *Cache) Bool(key string, def bool) bool {
	v, ok := c.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (c *Cache) SetBool(key string, v bool) { c.set(key, strconv.FormatBool(v)) }

func (c *Cache) String(key, def string) string {
	v, ok := c.get(key)
	if !ok {
		return def
	}
	return v
}

func (c *Cache) SetString(key, v string) { c.set(key, v) }

// Dirty returns the keys waiting for the next flush, sorted.
func (c *Cache) Dirty() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyKeysLocked()
}

func (c *Cache) dirtyKeysLocked() []string {
	keys := make([]string, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush writes dirty keys to the backend. On failure the keys remain dirty
// and a *PersistenceError is returned.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.dirty) == 0 {
		c.mu.Unlock()
		return nil
	}
	keys := c.dirtyKeysLocked()
	batch := make(map[string]string, len(keys))
	for _, k := range keys {
		batch[k] = c.values[k]
	}
	c.dirty = make(map[string]struct{})
	backend := c.backend
	c.mu.Unlock()

	if backend == nil {
		return nil
	}

	if err := backend.SavePreferences(ctx, batch); err != nil {
		c.mu.Lock()
		for _, k := range keys {
			c.dirty[k] = struct{}{}
		}
		c.mu.Unlock()
		perr := &PersistenceError{Keys: keys, Err: err}
		c.logger.Warn("flush failed, will retry", zap.Strings("keys", keys), zap.Error(err))
		return perr
	}

	c.logger.Debug("flushed preferences", zap.Int("keys", len(keys)))
	return nil
}
