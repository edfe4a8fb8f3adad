// Package pattern renders title patterns: every "[tag]" marker is replaced by
// the value its resolver produces, and the appended marker is added at the end.
package pattern

import (
	"fmt"
	"regexp"

	"wintitle/internal/logging"
	"wintitle/internal/tags"
)

// tagRegex finds tag markers. Brackets cannot be escaped, so "[" and "]"
// never appear inside a tag.
var tagRegex = regexp.MustCompile(`(?m)\[([^\[\]]+)\]`)

// Engine renders patterns against a tag registry. It is stateless and safe
// for concurrent use.
type Engine struct {
	registry *tags.Registry
}

// NewEngine creates an engine resolving tags through reg. A nil registry
// means tags.DefaultRegistry().
func NewEngine(reg *tags.Registry) *Engine {
	if reg == nil {
		reg = tags.DefaultRegistry()
	}
	return &Engine{registry: reg}
}

// Registry returns the registry the engine resolves through.
func (e *Engine) Registry() *tags.Registry {
	return e.registry
}

// Render substitutes the tags in pattern and appends " " plus the appended
// marker of in.Settings (empty when no settings are attached).
func (e *Engine) Render(pattern string, in *tags.Input) string {
	marker := ""
	if in.Settings != nil {
		marker = in.Settings.AppendedMarker
	}
	return e.Substitute(pattern, in) + " " + marker
}

// Substitute replaces the tags in pattern without appending the marker.
// Unknown tags and tags whose resolver fails stay as written.
func (e *Engine) Substitute(pattern string, in *tags.Input) string {
	return tagRegex.ReplaceAllStringFunc(pattern, func(match string) string {
		return e.replace(match, in)
	})
}

func (e *Engine) replace(match string, in *tags.Input) (out string) {
	tag := match[1 : len(match)-1]
	defer func() {
		if r := recover(); r != nil {
			logging.RenderDebug("tag [%s] panicked: %v", tag, r)
			out = ""
		}
	}()

	value, found, err := e.registry.Resolve(tag, in)
	switch {
	case err != nil:
		logging.RenderDebug("tag [%s] failed: %v", tag, err)
		return match
	case !found:
		logging.RenderDebug("unknown tag [%s]", tag)
		return match
	}
	return value
}

// Unresolved lists the tags of pattern that no resolver claims, in order of
// first appearance. Used by the CLI to warn about typos.
func (e *Engine) Unresolved(pattern string, in *tags.Input) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, m := range tagRegex.FindAllStringSubmatch(pattern, -1) {
		tag := m[1]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if _, found, _ := e.safeResolve(tag, in); !found {
			missing = append(missing, tag)
		}
	}
	return missing
}

func (e *Engine) safeResolve(tag string, in *tags.Input) (value string, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			found, err = true, fmt.Errorf("tag [%s] panicked: %v", tag, r)
		}
	}()
	return e.registry.Resolve(tag, in)
}
