// Package titleparse recovers the host name, workspace name and state suffix
// from a window title previously produced by a render, possibly by another
// instance running a different version.
//
// Each extraction is an ordered table of matchers tried most specific first.
// Workspace and document names may themselves contain " - ", so every
// matcher splits at the rightmost possible position: the leading group is
// greedy.
package titleparse

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"wintitle/internal/logging"
)

// matcher is one tier of an extraction table. template may reference {host}
// and {marker}; both are quoted before compilation. group is the capture
// holding the result.
type matcher struct {
	name     string
	template string
	group    int
}

// The parent-dir tier splits only on a backslash, the separator patterns put
// between [parentPath] and [solutionName]. Forward slashes stay part of the
// name so branch names like "feature/login" survive.
var workspaceMatchers = []matcher{
	{"parent-dir", `^(.*)\\(.*) - ({host}.*) {marker}$`, 2},
	{"marked", `^(.*) - ({host}.*) {marker}$`, 1},
	{"unmarked", `^(.*) - ({host}.*)$`, 1},
}

var stateMatchers = []matcher{
	{"marked", `^.* \((.*?)\) - ({host}.*) {marker}$`, 1},
	{"unmarked", `^.* \((.*?)\) - ({host}.*)$`, 1},
}

var hostMatchers = []matcher{
	{"marked", `^(.*) - ({host}.*) {marker}$`, 2},
	{"double-paren", `^(.*) - ({host}.* \(.+\)) \(.+\)$`, 2},
	{"separated", `^(.*) - ({host}.*)$`, 2},
	{"bare", `^({host}.*)$`, 1},
}

var elevationRegex = regexp.MustCompile(`^.*( \(.+\)).*$`)

type compiled struct {
	name  string
	re    *regexp.Regexp
	group int
}

func compile(table []matcher, host, marker string) []compiled {
	r := strings.NewReplacer("{host}", regexp.QuoteMeta(host), "{marker}", regexp.QuoteMeta(marker))
	out := make([]compiled, 0, len(table))
	for _, m := range table {
		re, err := regexp.Compile(r.Replace(m.template))
		if err != nil {
			logging.ParseDebug("matcher %s does not compile for host %q: %v", m.name, host, err)
			continue
		}
		out = append(out, compiled{name: m.name, re: re, group: m.group})
	}
	return out
}

// first returns the chosen capture of the first matcher that matches title.
func first(table []compiled, title string) (string, bool) {
	for _, m := range table {
		sub := m.re.FindStringSubmatch(title)
		if sub == nil || m.group >= len(sub) {
			continue
		}
		return sub[m.group], true
	}
	return "", false
}

// Parser holds the matchers compiled for one host name and appended marker.
type Parser struct {
	host   string
	marker string

	workspace []compiled
	state     []compiled
	hostName  []compiled
}

// New compiles a parser for host (the host's base application name, e.g.
// "Microsoft Visual Studio") and marker (the appended marker).
func New(host, marker string) *Parser {
	return &Parser{
		host:      host,
		marker:    marker,
		workspace: compile(workspaceMatchers, host, marker),
		state:     compile(stateMatchers, host, marker),
		hostName:  compile(hostMatchers, host, marker),
	}
}

type parserKey struct{ host, marker string }

const parserCacheSize = 16

var parsers, _ = lru.New[parserKey, *Parser](parserCacheSize)

// For returns a cached parser for host and marker.
func For(host, marker string) *Parser {
	key := parserKey{host, marker}
	if p, ok := parsers.Get(key); ok {
		return p
	}
	p := New(host, marker)
	parsers.Add(key, p)
	return p
}

// WorkspaceName extracts the workspace name. A trailing " (state)" is
// removed when the title carries one.
func (p *Parser) WorkspaceName(title string) (name string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.ParseDebug("workspace name parse of %q panicked: %v", title, r)
			name, ok = "", false
		}
	}()

	name, ok = first(p.workspace, title)
	if !ok {
		logging.ParseDebug("workspace name not found: %s", title)
		return "", false
	}
	if state, found := p.State(title); found && state != "" {
		name = strings.TrimSuffix(name, " ("+state+")")
	}
	return name, true
}

// State extracts the text of the " (state)" suffix preceding the host name.
func (p *Parser) State(title string) (state string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.ParseDebug("state parse of %q panicked: %v", title, r)
			state, ok = "", false
		}
	}()

	if strings.TrimSpace(title) == "" {
		return "", false
	}
	state, ok = first(p.state, title)
	if !ok {
		logging.ParseDebug("state not found: %s", title)
	}
	return state, ok
}

// HostName extracts the full host display name, including any elevation
// or edition suffix that follows the base name.
func (p *Parser) HostName(title string) (host string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.ParseDebug("host name parse of %q panicked: %v", title, r)
			host, ok = "", false
		}
	}()

	host, ok = first(p.hostName, title)
	if !ok {
		logging.ParseDebug("host name (%s) not found: %s", p.host, title)
	}
	return host, ok
}

// ParseWorkspaceName is For(host, marker).WorkspaceName(title).
func ParseWorkspaceName(title, host, marker string) (string, bool) {
	return For(host, marker).WorkspaceName(title)
}

// ParseState is For(host, marker).State(title).
func ParseState(title, host, marker string) (string, bool) {
	return For(host, marker).State(title)
}

// ParseHostName is For(host, marker).HostName(title).
func ParseHostName(title, host, marker string) (string, bool) {
	return For(host, marker).HostName(title)
}

// ElevationSuffix returns the last parenthesised part of a resolved host
// name including its leading space, e.g. " (Administrator)".
func ElevationSuffix(hostName string) string {
	m := elevationRegex.FindStringSubmatch(hostName)
	if m == nil {
		return ""
	}
	return m[1]
}
