package config

import (
	"fmt"
	"sync"
	"sync/atomic"

	"wintitle/internal/logging"
)

// Provider gives typed read access to the current global configuration and
// notifies subscribers when it changes. Returned configs must be treated as
// read-only; a change swaps in a new *Config.
type Provider interface {
	Current() *Config
	OnChange(fn func())
}

// subscribers is shared by the Provider implementations.
type subscribers struct {
	mu  sync.Mutex
	fns []func()
}

func (s *subscribers) add(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
}

func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), len(s.fns))
	copy(fns, s.fns)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Static is an in-memory Provider. Set swaps the config and notifies.
type Static struct {
	cur  atomic.Pointer[Config]
	subs subscribers
}

// NewStatic returns a Static provider; nil means DefaultConfig().
func NewStatic(cfg *Config) *Static {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Static{}
	s.cur.Store(cfg)
	return s
}

func (s *Static) Current() *Config   { return s.cur.Load() }
func (s *Static) OnChange(fn func()) { s.subs.add(fn) }

// Set replaces the configuration and fires change callbacks.
func (s *Static) Set(cfg *Config) {
	s.cur.Store(cfg)
	s.subs.notify()
}

// FileSource is a Provider backed by a YAML file. Reload keeps the previous
// configuration when the file cannot be parsed.
type FileSource struct {
	path string
	cur  atomic.Pointer[Config]
	subs subscribers
}

// NewFileSource loads path (missing file = defaults).
func NewFileSource(path string) (*FileSource, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &FileSource{path: path}
	s.cur.Store(cfg)
	return s, nil
}

func (s *FileSource) Path() string       { return s.path }
func (s *FileSource) Current() *Config   { return s.cur.Load() }
func (s *FileSource) OnChange(fn func()) { s.subs.add(fn) }

// Reload re-reads the file and notifies subscribers on success.
func (s *FileSource) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		logging.BootWarn("config reload failed, keeping previous config: %v", err)
		return fmt.Errorf("reload %s: %w", s.path, err)
	}
	if err := cfg.Validate(); err != nil {
		logging.BootWarn("config reload rejected, keeping previous config: %v", err)
		return fmt.Errorf("reload %s: %w", s.path, err)
	}
	s.cur.Store(cfg)
	logging.Boot("config reloaded from %s", s.path)
	s.subs.notify()
	return nil
}
