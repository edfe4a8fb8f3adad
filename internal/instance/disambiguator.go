// Package instance decides whether this host instance may customize its
// title when other instances of the same host are running. The only signal
// shared between instances is their title text, so sibling titles are parsed
// back into workspace names and compared.
package instance

import (
	"context"
	"path/filepath"
	"strings"

	"wintitle/internal/hostctx"
	"wintitle/internal/logging"
	"wintitle/internal/titleparse"
)

// Disambiguator holds the per-process facts the decision needs.
type Disambiguator struct {
	// AlwaysRewrite skips the sibling check entirely.
	AlwaysRewrite bool
	// SelfPID identifies this instance in the peer list.
	SelfPID int
	// HostName is the host's base application name used to parse titles.
	HostName string
	// Marker is the appended marker sibling titles are expected to carry.
	Marker string
}

// ShouldOverride reports whether the customized title should be applied for
// workspacePath. localSameWorkspace is the number of render targets in this
// process showing the same workspace; peers are the running instances of the
// host, with or without this one.
func (d *Disambiguator) ShouldOverride(workspacePath string, localSameWorkspace int, peers []hostctx.Peer) bool {
	if d.AlwaysRewrite {
		return true
	}
	if localSameWorkspace >= 2 {
		return true
	}
	others := 0
	for _, p := range peers {
		if p.PID != d.SelfPID {
			others++
		}
	}
	if others == 0 {
		return true
	}

	current := bareName(workspacePath)
	if current == "" {
		return true
	}

	parser := titleparse.For(d.HostName, d.Marker)
	for _, p := range peers {
		if p.PID == d.SelfPID {
			continue
		}
		name, ok := parser.WorkspaceName(p.Title)
		if !ok {
			continue
		}
		if name == current {
			logging.InstanceDebug("instance %d already shows workspace %s", p.PID, current)
			return false
		}
	}
	return true
}

// Decide is ShouldOverride with the peer list fetched from enum only when the
// decision depends on it. A failed enumeration counts as no siblings.
func (d *Disambiguator) Decide(ctx context.Context, workspacePath string, localSameWorkspace int, enum hostctx.PeerEnumerator) bool {
	if d.AlwaysRewrite || localSameWorkspace >= 2 || enum == nil {
		return true
	}
	peers, err := enum.Peers(ctx)
	if err != nil {
		logging.InstanceDebug("peer enumeration failed: %v", err)
		return true
	}
	return d.ShouldOverride(workspacePath, localSameWorkspace, peers)
}

// bareName is the workspace file name without extension.
func bareName(workspacePath string) string {
	if workspacePath == "" {
		return ""
	}
	base := filepath.Base(workspacePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
