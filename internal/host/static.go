// Package host contains host adapters used outside an IDE: a static context
// provider fed by the CLI, a terminal title sink, and a directory-based peer
// registry through which wintitle instances see each other's titles.
package host

import (
	"context"
	"slices"
	"sync"

	"wintitle/internal/hostctx"
)

// Static is a hostctx.Provider returning a fixed snapshot that callers may
// update between renders.
type Static struct {
	mu      sync.RWMutex
	base    string
	caption string
	snap    hostctx.Snapshot
}

// NewStatic creates a provider for a host called baseName whose own window
// caption is defaultCaption.
func NewStatic(baseName, defaultCaption string, snap hostctx.Snapshot) *Static {
	return &Static{base: baseName, caption: defaultCaption, snap: snap}
}

// Snapshot returns a copy of the current snapshot.
func (s *Static) Snapshot(ctx context.Context) (*hostctx.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.StartupProjects = slices.Clone(s.snap.StartupProjects)
	snap.DebuggedProcessesArgs = slices.Clone(s.snap.DebuggedProcessesArgs)
	return &snap, nil
}

func (s *Static) BaseName() string { return s.base }

func (s *Static) DefaultCaption(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caption, nil
}

// Update mutates the stored snapshot. Snapshots already returned are not
// affected.
func (s *Static) Update(fn func(*hostctx.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}
