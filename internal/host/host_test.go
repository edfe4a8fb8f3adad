package host

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wintitle/internal/hostctx"
)

func TestStatic_SnapshotIsCopy(t *testing.T) {
	s := NewStatic("Visual Studio", "Visual Studio", hostctx.Snapshot{
		WorkspacePath:   "/src/MyApp.sln",
		StartupProjects: []string{"Web.csproj"},
	})

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	snap.StartupProjects[0] = "changed"
	snap.WorkspacePath = "changed"

	again, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/src/MyApp.sln", again.WorkspacePath)
	assert.Equal(t, []string{"Web.csproj"}, again.StartupProjects)

	s.Update(func(snap *hostctx.Snapshot) { snap.Mode = hostctx.ModeBreak })
	again, _ = s.Snapshot(context.Background())
	assert.Equal(t, hostctx.ModeBreak, again.Mode)

	assert.Equal(t, "Visual Studio", s.BaseName())
	caption, err := s.DefaultCaption(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Visual Studio", caption)
}

func TestStatic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStatic("x", "x", hostctx.Snapshot{}).Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminalSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewTerminalSink(&buf)

	_, err := s.Title()
	assert.ErrorIs(t, err, hostctx.ErrNoTitle)

	require.NoError(t, s.SetTitle("MyApp - Visual Studio *"))
	assert.Equal(t, "\033]0;MyApp - Visual Studio *\007", buf.String())

	title, err := s.Title()
	require.NoError(t, err)
	assert.Equal(t, "MyApp - Visual Studio *", title)
}

func TestTerminalSink_StripsControlCharacters(t *testing.T) {
	var buf bytes.Buffer
	s := NewTerminalSink(&buf)
	require.NoError(t, s.SetTitle("evil\007\033]0;x\nname"))
	assert.Equal(t, "\033]0;evil]0;xname\007", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestTerminalSink_WriteError(t *testing.T) {
	s := NewTerminalSink(failingWriter{})
	assert.Error(t, s.SetTitle("x"))
	_, err := s.Title()
	assert.ErrorIs(t, err, hostctx.ErrNoTitle)
}

func TestDirPeers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "peers")
	d, err := NewDirPeers(dir)
	require.NoError(t, err)

	require.NoError(t, d.Publish(200, "Other - Visual Studio *"))
	require.NoError(t, d.Publish(100, "MyApp - Visual Studio *"))
	require.NoError(t, d.Publish(100, "MyApp (Debugging) - Visual Studio *"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.title"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "300.title"), 0755))

	peers, err := d.Peers(context.Background())
	require.NoError(t, err)
	want := []hostctx.Peer{
		{PID: 100, Title: "MyApp (Debugging) - Visual Studio *"},
		{PID: 200, Title: "Other - Visual Studio *"},
	}
	if diff := cmp.Diff(want, peers); diff != "" {
		t.Errorf("Peers() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, d.Remove(200))
	require.NoError(t, d.Remove(200))
	peers, err = d.Peers(context.Background())
	require.NoError(t, err)
	assert.Len(t, peers, 1)
}

func TestPublishingSink(t *testing.T) {
	d, err := NewDirPeers(t.TempDir())
	require.NoError(t, err)
	var buf bytes.Buffer
	s := &PublishingSink{Sink: NewTerminalSink(&buf), Peers: d, PID: 42}

	require.NoError(t, s.SetTitle("MyApp - Visual Studio *"))
	title, err := s.Title()
	require.NoError(t, err)
	assert.Equal(t, "MyApp - Visual Studio *", title)

	peers, err := d.Peers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []hostctx.Peer{{PID: 42, Title: "MyApp - Visual Studio *"}}, peers)
}
