// Package settings resolves the effective settings for a workspace by merging
// the global configuration with override files, and caches the result until
// the workspace or one of the files changes.
package settings

import (
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"wintitle/internal/config"
	"wintitle/internal/hostctx"
	"wintitle/internal/logging"
)

// parsedDocCacheSize bounds how many override files stay parsed in memory.
const parsedDocCacheSize = 64

// Snapshot is the settings in effect for exactly one workspace path.
// Pattern fields are nil when the built-in default should be used.
type Snapshot struct {
	WorkspacePath     string
	WorkspaceFileName string
	WorkspaceName     string

	AppendedMarker      string
	ClosestParentDepth  int
	FarthestParentDepth int

	DesignPattern  *string
	BreakPattern   *string
	RunningPattern *string
}

// PatternFor returns the configured pattern for a debugger mode. ok is false
// when no pattern is set (use the default) or the mode is unknown.
func (s *Snapshot) PatternFor(mode hostctx.Mode) (pattern string, ok bool) {
	var p *string
	switch mode {
	case hostctx.ModeDesign:
		p = s.DesignPattern
	case hostctx.ModeBreak:
		p = s.BreakPattern
	case hostctx.ModeRunning:
		p = s.RunningPattern
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Store produces Snapshots. Get is called from the render path; Clear may be
// called from event handlers.
type Store struct {
	cfg config.Provider

	mu        sync.Mutex
	global    overrideSource
	workspace overrideSource
	cached    *Snapshot
}

// NewStore creates a Store reading global values from cfg.
func NewStore(cfg config.Provider) *Store {
	docs, err := lru.New[string, parsedDoc](parsedDocCacheSize)
	if err != nil {
		// Only fails for a non-positive size
		panic(err)
	}
	return &Store{
		cfg:       cfg,
		global:    overrideSource{kind: "global", global: true, docs: docs},
		workspace: overrideSource{kind: "workspace", docs: docs},
	}
}

// Get returns the settings for workspacePath ("" = no workspace open).
// Consecutive calls for the same path return the same *Snapshot until an
// override file changes or Clear is called. Never fails: unreadable or
// malformed override files are skipped.
func (s *Store) Get(workspacePath string) *Snapshot {
	cfg := s.cfg.Current()

	s.mu.Lock()
	defer s.mu.Unlock()

	globalChanged := s.global.refresh(cfg.Overrides.GlobalOverridesFile)
	workspaceChanged := s.workspace.refresh(config.WorkspaceOverridePath(workspacePath))
	if globalChanged || workspaceChanged {
		s.cached = nil // force reload
	}

	// config already loaded, use cache
	if s.cached != nil && s.cached.WorkspacePath == workspacePath {
		return s.cached
	}

	snap := baseSnapshot(cfg)
	if workspacePath != "" {
		snap.WorkspacePath = workspacePath
		snap.WorkspaceFileName = filepath.Base(workspacePath)
		snap.WorkspaceName = strings.TrimSuffix(snap.WorkspaceFileName, filepath.Ext(snap.WorkspaceFileName))

		if cfg.Overrides.AllowWorkspaceOverrides {
			if o := s.global.lookup(workspacePath, snap.WorkspaceName); o != nil {
				logging.SettingsDebug("applying global override for %s", workspacePath)
				o.apply(snap)
			} else if o := s.workspace.lookup(workspacePath, snap.WorkspaceName); o != nil {
				logging.SettingsDebug("applying workspace override for %s", workspacePath)
				o.apply(snap)
			}
		}
	}

	s.cached = snap
	return snap
}

// Clear drops the cached snapshot and the remembered file stamps.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.SettingsDebug("clearing cached settings")
	s.cached = nil
	s.global.forget()
	s.workspace.forget()
}

func baseSnapshot(cfg *config.Config) *Snapshot {
	return &Snapshot{
		AppendedMarker:      cfg.AppendedMarker,
		ClosestParentDepth:  cfg.ClosestParentDepth,
		FarthestParentDepth: cfg.FarthestParentDepth,
		DesignPattern:       nonEmpty(cfg.Patterns.Design),
		BreakPattern:        nonEmpty(cfg.Patterns.Break),
		RunningPattern:      nonEmpty(cfg.Patterns.Running),
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
