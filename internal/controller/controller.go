// Package controller orchestrates title renders: it reacts to host triggers
// and a periodic timer, builds the render inputs, picks the pattern for the
// current mode and pushes the rendered title to the sink.
//
// At most one render runs at a time. A trigger that arrives while a render
// is in flight is dropped; the periodic timer re-renders soon after, so a
// dropped trigger only delays the title update.
package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"wintitle/internal/config"
	"wintitle/internal/hostctx"
	"wintitle/internal/instance"
	"wintitle/internal/logging"
	"wintitle/internal/pattern"
	"wintitle/internal/settings"
	"wintitle/internal/tags"
	"wintitle/internal/titleparse"
)

var (
	// ErrNoHostName is returned when the host display name cannot be
	// recovered from the host's default caption. No title is written.
	ErrNoHostName = errors.New("host name not found in default caption")

	// ErrUnknownMode is returned when the host reports a debugger mode with
	// no pattern.
	ErrUnknownMode = errors.New("no pattern for debugger mode")
)

// Dispatcher runs fn on the thread allowed to touch the title sink.
type Dispatcher func(fn func())

// Inline runs fn on the calling goroutine.
func Inline(fn func()) { fn() }

// Options configures a Controller. Host, Sink and Config are required.
type Options struct {
	Host   hostctx.Provider
	Sink   hostctx.Sink
	Config config.Provider

	Peers    hostctx.PeerEnumerator // nil: no sibling instances
	Settings *settings.Store        // nil: settings.NewStore(Config)
	Engine   *pattern.Engine        // nil: built-in tag registry
	Dispatch Dispatcher             // nil: Inline
	Interval time.Duration          // 0: Config refresh interval
	SelfPID  int                    // 0: os.Getpid()
}

// Controller renders titles. Create it with New.
type Controller struct {
	host     hostctx.Provider
	sink     hostctx.Sink
	cfg      config.Provider
	peers    hostctx.PeerEnumerator
	settings *settings.Store
	engine   *pattern.Engine
	dispatch Dispatcher
	interval time.Duration
	selfPID  int

	// slot is the single render slot.
	slot *semaphore.Weighted
	wg   sync.WaitGroup

	// Written only while holding slot.
	hostName  string
	elevation string
}

// New creates a controller. Configuration change notifications clear the
// settings cache and trigger a render.
func New(opts Options) (*Controller, error) {
	if opts.Host == nil || opts.Sink == nil || opts.Config == nil {
		return nil, fmt.Errorf("controller: host, sink and config are required")
	}
	c := &Controller{
		host:     opts.Host,
		sink:     opts.Sink,
		cfg:      opts.Config,
		peers:    opts.Peers,
		settings: opts.Settings,
		engine:   opts.Engine,
		dispatch: opts.Dispatch,
		interval: opts.Interval,
		selfPID:  opts.SelfPID,
		slot:     semaphore.NewWeighted(1),
	}
	if c.settings == nil {
		c.settings = settings.NewStore(c.cfg)
	}
	if c.engine == nil {
		c.engine = pattern.NewEngine(nil)
	}
	if c.dispatch == nil {
		c.dispatch = Inline
	}
	if c.interval <= 0 {
		c.interval = c.cfg.Current().GetRefreshInterval()
	}
	if c.selfPID == 0 {
		c.selfPID = os.Getpid()
	}

	c.cfg.OnChange(func() {
		logging.Render("configuration changed, clearing settings cache")
		c.settings.Clear()
		c.Trigger()
	})
	return c, nil
}

// Settings exposes the settings store, e.g. for file watchers.
func (c *Controller) Settings() *settings.Store {
	return c.settings
}

// Trigger starts a background render unless one is already in flight.
// It reports whether the trigger was accepted.
func (c *Controller) Trigger() bool {
	if !c.slot.TryAcquire(1) {
		logging.RenderDebug("render in flight, trigger dropped")
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.slot.Release(1)
		if _, err := c.render(context.Background()); err != nil {
			logging.RenderDebug("render failed: %v", err)
		}
	}()
	return true
}

// WorkspaceChanged handles solution-lifecycle events: the workspace may be a
// different one now, so cached settings are dropped before rendering.
func (c *Controller) WorkspaceChanged() bool {
	c.settings.Clear()
	return c.Trigger()
}

// RenderOnce waits for the render slot and renders synchronously. It returns
// the computed title even when it matched the displayed one and no write
// was needed.
func (c *Controller) RenderOnce(ctx context.Context) (string, error) {
	if err := c.slot.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.slot.Release(1)
	return c.render(ctx)
}

// Wait blocks until no background render is in flight.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Run renders once, then on every tick of the refresh interval until ctx is
// done. It waits for in-flight renders before returning.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer c.wg.Wait()

	logging.Render("title controller started (interval %s)", c.interval)
	c.Trigger()
	for {
		select {
		case <-ctx.Done():
			logging.Render("title controller stopped")
			return nil
		case <-ticker.C:
			c.Trigger()
		}
	}
}

// render runs one pass. The caller holds the slot.
func (c *Controller) render(ctx context.Context) (title string, err error) {
	log := logging.Get(logging.CategoryRender).With("render_id", uuid.NewString())
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			title, err = "", fmt.Errorf("render panicked: %v", r)
		}
		if err != nil {
			log.Debug("render failed after %s: %v", time.Since(start), err)
		}
	}()

	cfg := c.cfg.Current()
	if err := c.resolveHostName(ctx, cfg); err != nil {
		return "", err
	}

	provided, err := c.host.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	snap := new(hostctx.Snapshot)
	*snap = *provided
	snap.HostName = c.hostName
	snap.ElevationSuffix = c.elevation

	set := c.settings.Get(snap.WorkspacePath)

	d := &instance.Disambiguator{
		AlwaysRewrite: cfg.AlwaysRewriteTitles,
		SelfPID:       c.selfPID,
		HostName:      c.host.BaseName(),
		Marker:        set.AppendedMarker,
	}
	useDefault := !d.Decide(ctx, snap.WorkspacePath, snap.LocalSameWorkspace, c.peers)

	p, err := selectPattern(snap, set, cfg, useDefault)
	if err != nil {
		return "", err
	}

	title = c.engine.Render(p, tags.NewInput(ctx, snap, set))
	log.Debug("rendered %q from %q (default=%v, mode=%s) in %s", title, p, useDefault, snap.Mode, time.Since(start))

	c.write(title)
	return title, nil
}

// resolveHostName recovers the host display name and elevation suffix from
// the host's default caption. The result is cached after the first success.
func (c *Controller) resolveHostName(ctx context.Context, cfg *config.Config) error {
	if c.hostName != "" {
		return nil
	}
	caption, err := c.host.DefaultCaption(ctx)
	if err != nil {
		return fmt.Errorf("default caption: %w", err)
	}
	name, ok := titleparse.ParseHostName(caption, c.host.BaseName(), cfg.AppendedMarker)
	if !ok || name == "" {
		return fmt.Errorf("%w: %q", ErrNoHostName, caption)
	}
	c.hostName = name
	c.elevation = titleparse.ElevationSuffix(name)
	logging.Render("host name resolved: %q (elevation %q)", c.hostName, c.elevation)
	return nil
}

// write pushes title to the sink unless it is already displayed.
func (c *Controller) write(title string) {
	current, err := c.sink.Title()
	if err != nil && !errors.Is(err, hostctx.ErrNoTitle) {
		logging.RenderDebug("reading current title: %v", err)
	}
	if err == nil && current == title {
		return
	}
	c.dispatch(func() {
		if err := c.sink.SetTitle(title); err != nil {
			logging.RenderError("writing title: %v", err)
		}
	})
}

// selectPattern picks the pattern for the snapshot. useDefault selects the
// built-in patterns instead of configured ones.
func selectPattern(snap *hostctx.Snapshot, set *settings.Snapshot, cfg *config.Config, useDefault bool) (string, error) {
	if !snap.HasWorkspace() {
		if snap.DocumentPath == "" && snap.ActiveWindowCaption == "" {
			return choose(useDefault, cfg.Patterns.NothingOpen, config.DefaultPatternNothingOpen), nil
		}
		return choose(useDefault, cfg.Patterns.DocumentNoWorkspace, config.DefaultPatternDocumentNoWorkspace), nil
	}

	var fallback string
	switch snap.Mode {
	case hostctx.ModeDesign:
		fallback = config.DefaultPatternDesign
	case hostctx.ModeBreak:
		fallback = config.DefaultPatternBreak
	case hostctx.ModeRunning:
		fallback = config.DefaultPatternRunning
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownMode, snap.Mode)
	}
	if useDefault {
		return fallback, nil
	}
	if p, ok := set.PatternFor(snap.Mode); ok {
		return p, nil
	}
	return fallback, nil
}

func choose(useDefault bool, configured, fallback string) string {
	if useDefault || configured == "" {
		return fallback
	}
	return configured
}
