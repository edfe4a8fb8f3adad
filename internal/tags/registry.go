// Package tags holds the tag resolvers that turn "[tagName]" markers into
// values, and the Registry that dispatches to them.
//
// There are exactly two resolver kinds. A NamedResolver owns one fixed tag
// name and is found with a map lookup. A PatternResolver is asked whether it
// understands a tag text, which lets tags carry parameters ("env:PATH",
// "parentPath:1:3"). PatternResolvers are tried in registration order after
// the map lookup misses.
package tags

import (
	"context"
	"fmt"

	"wintitle/internal/hostctx"
	"wintitle/internal/settings"
)

// Input is what resolvers read during one render pass.
type Input struct {
	*hostctx.Snapshot
	Settings *settings.Snapshot // may be nil
	Ctx      context.Context
}

// NewInput bundles a host snapshot and the settings in effect.
func NewInput(ctx context.Context, snap *hostctx.Snapshot, s *settings.Snapshot) *Input {
	if snap == nil {
		snap = &hostctx.Snapshot{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Input{Snapshot: snap, Settings: s, Ctx: ctx}
}

func (in *Input) depths() (closest, farthest int) {
	if in.Settings == nil {
		return 1, 1
	}
	return in.Settings.ClosestParentDepth, in.Settings.FarthestParentDepth
}

// TagInfo documents one supported tag.
type TagInfo struct {
	Name        string
	Description string
}

// Resolver is either a *NamedResolver or a *PatternResolver.
type Resolver interface {
	Tags() []TagInfo
	resolver()
}

// NamedResolver resolves exactly one tag name.
type NamedResolver struct {
	Name        string
	Description string
	Resolve     func(in *Input) (string, error)
}

func (r *NamedResolver) Tags() []TagInfo { return []TagInfo{{r.Name, r.Description}} }
func (r *NamedResolver) resolver()       {}

// PatternResolver resolves any tag text it recognizes. TryResolve returns
// ok=false for tags it does not handle.
type PatternResolver struct {
	Info       []TagInfo
	TryResolve func(tag string, in *Input) (value string, ok bool, err error)
}

func (r *PatternResolver) Tags() []TagInfo { return r.Info }
func (r *PatternResolver) resolver()       {}

// Registry dispatches tag texts to resolvers. Register everything at startup;
// after that a Registry is read-only and safe for concurrent use.
type Registry struct {
	named    map[string]*NamedResolver
	patterns []*PatternResolver
	all      []Resolver
}

// NewRegistry creates a registry holding rs in order.
func NewRegistry(rs ...Resolver) *Registry {
	r := &Registry{named: make(map[string]*NamedResolver)}
	for _, res := range rs {
		r.Register(res)
	}
	return r
}

// Register adds a resolver. Registering two NamedResolvers for the same name
// is a programming error and panics.
func (r *Registry) Register(res Resolver) {
	switch v := res.(type) {
	case *NamedResolver:
		if _, dup := r.named[v.Name]; dup {
			panic(fmt.Sprintf("tags: duplicate resolver for %q", v.Name))
		}
		r.named[v.Name] = v
	case *PatternResolver:
		r.patterns = append(r.patterns, v)
	default:
		panic(fmt.Sprintf("tags: unsupported resolver type %T", res))
	}
	r.all = append(r.all, res)
}

// Resolve looks tag up: exact name first, then pattern resolvers in order.
// found is false when no resolver claims the tag. A resolver error is returned
// with found=true; callers leave such tags unresolved.
func (r *Registry) Resolve(tag string, in *Input) (value string, found bool, err error) {
	if nr, ok := r.named[tag]; ok {
		v, err := nr.Resolve(in)
		return v, true, err
	}
	for _, pr := range r.patterns {
		v, ok, err := pr.TryResolve(tag, in)
		if ok || err != nil {
			return v, true, err
		}
	}
	return "", false, nil
}

// Tags lists every supported tag in registration order.
func (r *Registry) Tags() []TagInfo {
	var out []TagInfo
	for _, res := range r.all {
		out = append(out, res.Tags()...)
	}
	return out
}
