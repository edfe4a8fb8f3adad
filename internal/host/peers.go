package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"wintitle/internal/hostctx"
	"wintitle/internal/logging"
)

const peerFileExt = ".title"

// DirPeers is a peer registry in a shared directory: each instance publishes
// its current title in "<dir>/<pid>.title".
type DirPeers struct {
	dir string
}

// NewDirPeers creates the registry directory if needed.
func NewDirPeers(dir string) (*DirPeers, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create peer dir: %w", err)
	}
	return &DirPeers{dir: dir}, nil
}

func (d *DirPeers) Dir() string { return d.dir }

func (d *DirPeers) path(pid int) string {
	return filepath.Join(d.dir, strconv.Itoa(pid)+peerFileExt)
}

// Publish records title for pid. The file is replaced atomically so readers
// never see a partial title.
func (d *DirPeers) Publish(pid int, title string) error {
	tmp, err := os.CreateTemp(d.dir, ".publish-*")
	if err != nil {
		return fmt.Errorf("publish title: %w", err)
	}
	if _, err := tmp.WriteString(title); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("publish title: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish title: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path(pid)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish title: %w", err)
	}
	return nil
}

// Remove withdraws pid from the registry. Removing an absent entry is not an
// error.
func (d *DirPeers) Remove(pid int) error {
	if err := os.Remove(d.path(pid)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Peers lists every published instance ordered by pid. Entries that are not
// "<pid>.title" files or cannot be read are skipped.
func (d *DirPeers) Peers(ctx context.Context) ([]hostctx.Peer, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list peers: %w", err)
	}
	var peers []hostctx.Peer
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), peerFileExt) {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSuffix(e.Name(), peerFileExt))
		if err != nil || pid <= 0 {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.dir, e.Name()))
		if err != nil {
			logging.HostDebug("skipping peer %d: %v", pid, err)
			continue
		}
		peers = append(peers, hostctx.Peer{PID: pid, Title: string(data)})
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].PID < peers[j].PID })
	return peers, nil
}

// PublishingSink wraps a sink and publishes every title it writes so that
// sibling instances can see it.
type PublishingSink struct {
	hostctx.Sink
	Peers *DirPeers
	PID   int
}

func (s *PublishingSink) SetTitle(title string) error {
	if err := s.Sink.SetTitle(title); err != nil {
		return err
	}
	if err := s.Peers.Publish(s.PID, title); err != nil {
		logging.HostWarn("publishing title for pid %d: %v", s.PID, err)
	}
	return nil
}
