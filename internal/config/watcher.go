package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wintitle/internal/logging"
)

// Watcher watches individual files (config file, override files) and calls a
// callback once per burst of changes. fsnotify watches directories, so the
// parent directory of each file is watched and events are filtered by name.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	files       map[string]func() // cleaned file path -> callback
	dirs        map[string]int    // watched dir -> number of files in it
	pending     map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a Watcher. Call Start to begin delivering callbacks.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		files:       make(map[string]func()),
		dirs:        make(map[string]int),
		pending:     make(map[string]time.Time),
		debounceDur: 200 * time.Millisecond, // Editors save in several writes
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Watch registers fn for changes to path. Re-registering a path replaces its
// callback. A missing parent directory is logged and otherwise ignored.
func (w *Watcher) Watch(path string, fn func()) {
	if path == "" || fn == nil {
		return
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[path]; exists {
		w.files[path] = fn
		return
	}
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			logging.Get(logging.CategoryWatcher).Warn("cannot watch %s: %v", dir, err)
			return
		}
		logging.WatcherDebug("watching directory %s", dir)
	}
	w.dirs[dir]++
	w.files[path] = fn
}

// Unwatch removes path; its directory is dropped when no file in it is watched.
func (w *Watcher) Unwatch(path string) {
	if path == "" {
		return
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[path]; !exists {
		return
	}
	delete(w.files, path)
	delete(w.pending, path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Start begins delivering callbacks. Non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.WatcherError("error closing watcher: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(50 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatcherError("watcher error: %v", err)
		case <-debounceTicker.C:
			w.flush(time.Now())
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return // chmod
	}
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, watched := w.files[path]; !watched {
		return
	}
	w.pending[path] = time.Now()
	logging.WatcherDebug("%s event for %s", event.Op, path)
}

// flush fires callbacks for files that have been quiet for debounceDur.
func (w *Watcher) flush(now time.Time) {
	var due []func()

	w.mu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) < w.debounceDur {
			continue
		}
		delete(w.pending, path)
		if fn := w.files[path]; fn != nil {
			due = append(due, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}
