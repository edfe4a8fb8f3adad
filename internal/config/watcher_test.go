package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_SetNotifies(t *testing.T) {
	s := NewStatic(nil)
	assert.Equal(t, DefaultAppendedMarker, s.Current().AppendedMarker)

	var calls atomic.Int32
	s.OnChange(func() { calls.Add(1) })
	s.OnChange(nil)

	cfg := DefaultConfig()
	cfg.AppendedMarker = "!"
	s.Set(cfg)

	assert.Equal(t, "!", s.Current().AppendedMarker)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFileSource_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wintitle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("appended_marker: \"a\"\n"), 0644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	assert.Equal(t, "a", src.Current().AppendedMarker)

	var calls atomic.Int32
	src.OnChange(func() { calls.Add(1) })

	require.NoError(t, os.WriteFile(path, []byte("appended_marker: \"b\"\n"), 0644))
	require.NoError(t, src.Reload())
	assert.Equal(t, "b", src.Current().AppendedMarker)
	assert.Equal(t, int32(1), calls.Load())

	// Broken file keeps the previous config and does not notify
	require.NoError(t, os.WriteFile(path, []byte("appended_marker: [\n"), 0644))
	assert.Error(t, src.Reload())
	assert.Equal(t, "b", src.Current().AppendedMarker)

	// Invalid values are rejected as well
	require.NoError(t, os.WriteFile(path, []byte("closest_parent_depth: 4\nfarthest_parent_depth: 1\n"), 0644))
	assert.Error(t, src.Reload())
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.sln.title.yaml")
	other := filepath.Join(dir, "unrelated.txt")

	w, err := NewWatcher()
	require.NoError(t, err)
	w.debounceDur = 10 * time.Millisecond

	fired := make(chan struct{}, 8)
	w.Watch(path, func() { fired <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("overrides: []\n"), 0644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not fired for watched file")
	}
}

func TestWatcher_Unwatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	w.Watch(path, func() {})
	w.Watch(path, func() {}) // replace, no double count
	assert.Equal(t, 1, w.dirs[dir])

	w.Unwatch(path)
	assert.Empty(t, w.files)
	assert.Empty(t, w.dirs)

	w.Unwatch(path) // no-op
}

func TestWatcher_FlushDebounces(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	var calls atomic.Int32
	path := filepath.Join(t.TempDir(), "x.yaml")
	w.Watch(path, func() { calls.Add(1) })

	now := time.Now()
	w.pending[path] = now

	w.flush(now.Add(w.debounceDur / 2))
	assert.Equal(t, int32(0), calls.Load())

	w.flush(now.Add(w.debounceDur))
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, w.pending)
}
