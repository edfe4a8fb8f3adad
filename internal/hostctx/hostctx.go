// Package hostctx defines the facts a render pass reads about the host
// application and the interfaces through which the host is reached: context
// provider, title sink and peer enumerator.
package hostctx

import (
	"context"
	"errors"
	"os"
)

// Mode is the debugger execution mode of the host.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeDesign
	ModeBreak
	ModeRunning
)

func (m Mode) String() string {
	switch m {
	case ModeDesign:
		return "design"
	case ModeBreak:
		return "break"
	case ModeRunning:
		return "running"
	default:
		return "unknown"
	}
}

// ParseMode maps "design", "break", "running" (and a few aliases) to a Mode.
func ParseMode(s string) Mode {
	switch s {
	case "design", "":
		return ModeDesign
	case "break", "debugging", "paused":
		return ModeBreak
	case "running", "run":
		return ModeRunning
	default:
		return ModeUnknown
	}
}

// Snapshot is the read-only bundle of facts assembled once per render pass.
// Empty strings mean "not available". Never mutate a Snapshot after handing
// it to a render.
type Snapshot struct {
	// Host identity
	HostName        string // resolved display name, e.g. "Microsoft Visual Studio (Administrator)"
	ElevationSuffix string // e.g. " (Administrator)"
	HostVersion     string // e.g. "17.8.3"
	ProcessID       int

	// Workspace and documents
	WorkspacePath         string
	DocumentPath          string
	ActiveWindowCaption   string
	ActiveProjectName     string
	DocumentProjectName   string
	DocumentProjectFile   string
	StartupProjects       []string // paths relative to the workspace directory
	ConfigurationName     string
	PlatformName          string
	LocalSameWorkspace    int // render targets in this process showing WorkspacePath
	DebuggedProcessesArgs []string

	Mode Mode

	// Environment lookup; nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Getenv reads an environment variable through the snapshot's lookup.
func (s *Snapshot) Getenv(name string) (string, bool) {
	if s.LookupEnv != nil {
		return s.LookupEnv(name)
	}
	return os.LookupEnv(name)
}

// HasWorkspace reports whether a workspace is open.
func (s *Snapshot) HasWorkspace() bool {
	return s.WorkspacePath != ""
}

// Provider builds a Snapshot. The controller never mutates the returned value;
// it fills HostName and ElevationSuffix on its own copy and caches them for the
// process lifetime.
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)

	// BaseName is the host's fixed application name ("Microsoft Visual Studio").
	BaseName() string

	// DefaultCaption is the host's own (uncustomized) main window caption.
	DefaultCaption(ctx context.Context) (string, error)
}

// ErrNoTitle is returned by sinks that have no title to report yet.
var ErrNoTitle = errors.New("no title available")

// Sink displays the window title.
type Sink interface {
	Title() (string, error)
	SetTitle(title string) error
}

// Peer is another running instance of the same host application.
type Peer struct {
	PID   int
	Title string
}

// PeerEnumerator lists running instances of the host, including the current one.
type PeerEnumerator interface {
	Peers(ctx context.Context) ([]Peer, error)
}

// PeerFunc adapts a function to PeerEnumerator.
type PeerFunc func(ctx context.Context) ([]Peer, error)

func (f PeerFunc) Peers(ctx context.Context) ([]Peer, error) { return f(ctx) }
