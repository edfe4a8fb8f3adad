package settings

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"wintitle/internal/logging"
)

// stamp identifies one version of a file on disk.
type stamp struct {
	modTime time.Time
	size    int64
}

func (a stamp) equal(b stamp) bool {
	return a.size == b.size && a.modTime.Equal(b.modTime)
}

// parsedDoc is a parse result tied to the stamp it was read at.
type parsedDoc struct {
	stamp stamp
	doc   *Document // nil when the file was malformed
}

// overrideSource tracks one override file (global or workspace-specific):
// which path it currently points at, the stamp last seen, and the parsed
// document. Parses are shared through docs so that switching back and forth
// between workspaces does not reparse files that have not changed.
type overrideSource struct {
	kind   string // "global" or "workspace", for logs
	global bool   // entries must name their workspace

	path   string
	exists bool
	stamp  stamp
	doc    *Document

	docs *lru.Cache[string, parsedDoc]
}

// refresh points the source at path and re-checks its stamp. It returns true
// when the effective document may have changed since the previous refresh.
func (s *overrideSource) refresh(path string) bool {
	changed := false
	if path != s.path {
		changed = s.exists || s.path != ""
		s.path = path
		s.exists = false
		s.stamp = stamp{}
		s.doc = nil
	}
	if path == "" {
		return changed
	}

	info, err := os.Stat(path)
	if err != nil {
		if s.exists {
			logging.SettingsDebug("%s override file removed: %s", s.kind, path)
			changed = true
		}
		s.exists = false
		s.stamp = stamp{}
		s.doc = nil
		return changed
	}

	st := stamp{modTime: info.ModTime(), size: info.Size()}
	if s.exists && st.equal(s.stamp) {
		return changed
	}

	s.exists = true
	s.stamp = st
	s.doc = s.load(path, st)
	return true
}

// load returns the parsed document for path at stamp st, from cache when the
// cached parse was taken at the same stamp.
func (s *overrideSource) load(path string, st stamp) *Document {
	if s.docs != nil {
		if cached, ok := s.docs.Get(path); ok && cached.stamp.equal(st) {
			return cached.doc
		}
	}

	var doc *Document
	data, err := os.ReadFile(path)
	if err != nil {
		logging.SettingsWarn("cannot read %s override file %s: %v", s.kind, path, err)
	} else if doc, err = parseDocument(data); err != nil {
		logging.SettingsWarn("ignoring malformed %s override file %s: %v", s.kind, path, err)
		doc = nil
	} else {
		logging.SettingsDebug("parsed %s override file %s (%d entries)", s.kind, path, len(doc.Overrides))
	}

	if s.docs != nil {
		s.docs.Add(path, parsedDoc{stamp: st, doc: doc})
	}
	return doc
}

// forget drops the remembered stamp so the next refresh reparses.
func (s *overrideSource) forget() {
	s.path = ""
	s.exists = false
	s.stamp = stamp{}
	s.doc = nil
	if s.docs != nil {
		s.docs.Purge()
	}
}

// lookup returns the entry matching the workspace, if any.
func (s *overrideSource) lookup(workspacePath, workspaceName string) *Override {
	return s.doc.find(workspacePath, workspaceName, s.global)
}
