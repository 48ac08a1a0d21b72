// Package settings provides the registry of user-editable settings, backed by
// the hush config file.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Veraticus/hush/pkg/config"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownKey is returned for keys that were never registered.
	ErrUnknownKey = errors.New("settings: unknown key")
	// ErrDuplicateKey is returned when a key is registered twice.
	ErrDuplicateKey = errors.New("settings: key already registered")
)

// Setting describes one registered key and how it maps onto the config.
type Setting struct {
	Key     string
	Name    string
	Hint    string
	Default string

	// Get and Set bind the key to a config field.
	Get func(cfg *config.Config) string
	Set func(cfg *config.Config, value string)

	// OnChange is called with the new value after a committed change.
	OnChange func(value string)
}

// Registry holds registered settings and the config they read from.
// Change callbacks run on the goroutine that committed the change, outside
// of the registry lock.
type Registry struct {
	path string
	log  zerolog.Logger

	mu        sync.RWMutex
	cfg       *config.Config
	settings  map[string]Setting
	listeners map[string][]func(string)
}

// NewRegistry creates a registry over cfg, persisting edits to path.
func NewRegistry(path string, cfg *config.Config, log zerolog.Logger) *Registry {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Registry{
		path:      path,
		log:       log,
		cfg:       cfg,
		settings:  make(map[string]Setting),
		listeners: make(map[string][]func(string)),
	}
}

// Path returns the file backing the registry.
func (r *Registry) Path() string {
	return r.path
}

// Register adds a setting.
func (r *Registry) Register(s Setting) error {
	if s.Key == "" {
		return fmt.Errorf("settings: empty key")
	}
	if s.Get == nil || s.Set == nil {
		return fmt.Errorf("settings: %s: Get and Set are required", s.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.settings[s.Key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, s.Key)
	}
	r.settings[s.Key] = s
	return nil
}

// Settings returns the registered settings sorted by key.
func (r *Registry) Settings() []Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Setting, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Get returns the current value of key.
func (r *Registry) Get(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s.Get(r.cfg), nil
}

// OnChange adds a listener for key, called after its OnChange hook.
func (r *Registry) OnChange(key string, fn func(value string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.settings[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	r.listeners[key] = append(r.listeners[key], fn)
	return nil
}

// Set updates key, persists it and fires change callbacks when the value
// actually changed. Only key is written back: the file keeps its own values
// for everything else, whatever flags or environment this run was given.
func (r *Registry) Set(key, value string) error {
	r.mu.Lock()
	s, ok := r.settings[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if s.Get(r.cfg) == value {
		r.mu.Unlock()
		return nil
	}

	next := *r.cfg
	s.Set(&next, value)
	if r.path != "" {
		if err := r.persistLocked(s, value); err != nil {
			r.mu.Unlock()
			return fmt.Errorf("failed to persist %s: %w", key, err)
		}
	}
	r.cfg = &next
	fns := r.callbacksLocked(s)
	r.mu.Unlock()

	r.log.Debug().Str("key", key).Msg("setting changed")
	for _, fn := range fns {
		fn(value)
	}
	return nil
}

// Reload re-reads the backing file and fires change callbacks for every
// registered key whose value differs from before.
func (r *Registry) Reload() error {
	next, err := config.LoadFrom(r.path)
	if err != nil {
		return err
	}

	type change struct {
		key   string
		value string
		fns   []func(string)
	}

	r.mu.Lock()
	var changes []change
	for key, s := range r.settings {
		before, after := s.Get(r.cfg), s.Get(next)
		if before != after {
			changes = append(changes, change{key: key, value: after, fns: r.callbacksLocked(s)})
		}
	}
	r.cfg = next
	r.mu.Unlock()

	sort.Slice(changes, func(i, j int) bool { return changes[i].key < changes[j].key })
	for _, c := range changes {
		r.log.Debug().Str("key", c.key).Msg("setting changed on disk")
		for _, fn := range c.fns {
			fn(c.value)
		}
	}
	return nil
}

func (r *Registry) persistLocked(s Setting, value string) error {
	stored, err := config.LoadFile(r.path)
	if err != nil {
		return err
	}
	s.Set(stored, value)
	return config.Save(r.path, stored)
}

func (r *Registry) callbacksLocked(s Setting) []func(string) {
	fns := make([]func(string), 0, 1+len(r.listeners[s.Key]))
	if s.OnChange != nil {
		fns = append(fns, s.OnChange)
	}
	fns = append(fns, r.listeners[s.Key]...)
	return fns
}
