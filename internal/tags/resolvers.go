package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"wintitle/internal/vcs"
)

// DefaultRegistry returns the registry with every built-in resolver. The
// order matters for pattern resolvers and is:
//
//  1. path and file-name resolvers
//  2. parent / ancestor resolvers
//  3. IDE and platform resolvers
//  4. version-control and workspace resolvers
//  5. process and environment resolvers
//  6. branchName, the VCS-agnostic catch-all
func DefaultRegistry() *Registry {
	return NewRegistry(
		// 1. path / file names
		documentName, projectName, startupProjectNames, startupProjectNamesNonRelative,
		documentProjectName, documentProjectFileName, solutionName,
		documentPath, documentParentPath, workspaceDirPath,
		// 2. ancestors
		parentPath, parentDir,
		// 3. IDE / platform
		ideName, elevationSuffix, hostMajorVersion, hostMajorVersionYear,
		platformName, configurationName,
		// 4. VCS / workspace
		gitBranchName, hgBranchName, svnURL, workspaceFileName,
		// 5. process / environment
		processID, envVar, debuggedProcessesArgs,
		// 6. catch-all
		branchName,
	)
}

var sep = string(filepath.Separator)

// -----------------------------------------------------------------------------
// Path helpers
// -----------------------------------------------------------------------------

// ancestors returns the directory names above file, nearest first:
// ancestors("/a/b/c/x.sln") = [c b a].
func ancestors(file string) []string {
	var names []string
	dir := filepath.Dir(filepath.Clean(file))
	for {
		base := filepath.Base(dir)
		parent := filepath.Dir(dir)
		if parent == dir || base == sep || base == "." {
			break
		}
		names = append(names, base)
		dir = parent
	}
	return names
}

// ancestorRange joins the ancestors of file from depth farthest down to depth
// closest (1 = containing directory). Out-of-range depths are clipped.
func ancestorRange(file string, closest, farthest int) string {
	names := ancestors(file)
	if closest < 1 {
		closest = 1
	}
	if farthest > len(names) {
		farthest = len(names)
	}
	if farthest < closest {
		return ""
	}
	parts := make([]string, 0, farthest-closest+1)
	for d := farthest; d >= closest; d-- {
		parts = append(parts, names[d-1])
	}
	return strings.Join(parts, sep)
}

// lastSegments returns the last n segments of path.
func lastSegments(path string, n int) string {
	path = filepath.Clean(path)
	segs := strings.Split(path, sep)
	var kept []string
	for _, s := range segs {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if n >= len(kept) {
		return path
	}
	return strings.Join(kept[len(kept)-n:], sep)
}

// parseParams splits "name:a:b" and returns the integer parameters when the
// prefix matches and every parameter is a non-negative integer.
func parseParams(tag, name string, maxParams int) ([]int, bool) {
	rest, found := strings.CutPrefix(tag, name+":")
	if !found {
		return nil, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) > maxParams {
		return nil, false
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func nameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// vcsDir is the directory VCS lookups start from: the workspace directory,
// or the active document's directory when no workspace is open.
func (in *Input) vcsDir() string {
	switch {
	case in.WorkspacePath != "":
		return filepath.Dir(in.WorkspacePath)
	case in.DocumentPath != "":
		return filepath.Dir(in.DocumentPath)
	}
	return ""
}

// -----------------------------------------------------------------------------
// 1. Path and file-name resolvers
// -----------------------------------------------------------------------------

var documentName = &NamedResolver{
	Name:        "documentName",
	Description: "File name of the active document, or the active window caption",
	Resolve: func(in *Input) (string, error) {
		if in.DocumentPath != "" {
			return filepath.Base(in.DocumentPath), nil
		}
		return in.ActiveWindowCaption, nil
	},
}

var projectName = &NamedResolver{
	Name:        "projectName",
	Description: "Name of the active project",
	Resolve:     func(in *Input) (string, error) { return in.ActiveProjectName, nil },
}

var startupProjectNames = &NamedResolver{
	Name:        "startupProjectNames",
	Description: "Startup projects as workspace-relative paths without extension",
	Resolve: func(in *Input) (string, error) {
		names := make([]string, 0, len(in.StartupProjects))
		for _, p := range in.StartupProjects {
			names = append(names, strings.TrimSuffix(p, filepath.Ext(p)))
		}
		return strings.Join(names, "; "), nil
	},
}

var startupProjectNamesNonRelative = &NamedResolver{
	Name:        "startupProjectNamesNonRelative",
	Description: "Startup project names without directories or extension",
	Resolve: func(in *Input) (string, error) {
		names := make([]string, 0, len(in.StartupProjects))
		for _, p := range in.StartupProjects {
			names = append(names, nameWithoutExt(p))
		}
		return strings.Join(names, "; "), nil
	},
}

var documentProjectName = &NamedResolver{
	Name:        "documentProjectName",
	Description: "Name of the project owning the active document",
	Resolve:     func(in *Input) (string, error) { return in.DocumentProjectName, nil },
}

var documentProjectFileName = &NamedResolver{
	Name:        "documentProjectFileName",
	Description: "File name of the project owning the active document",
	Resolve:     func(in *Input) (string, error) { return in.DocumentProjectFile, nil },
}

var solutionName = &NamedResolver{
	Name:        "solutionName",
	Description: "Workspace (solution) name without extension",
	Resolve: func(in *Input) (string, error) {
		if in.Settings != nil && in.Settings.WorkspacePath == in.WorkspacePath && in.Settings.WorkspaceName != "" {
			return in.Settings.WorkspaceName, nil
		}
		if in.WorkspacePath == "" {
			return "", nil
		}
		return nameWithoutExt(in.WorkspacePath), nil
	},
}

var documentPath = &PatternResolver{
	Info: []TagInfo{
		{"documentPath", "Full path of the active document"},
		{"documentPath:N", "Last N segments of the active document path"},
	},
	TryResolve: func(tag string, in *Input) (string, bool, error) {
		if tag == "documentPath" {
			return in.DocumentPath, true, nil
		}
		params, ok := parseParams(tag, "documentPath", 1)
		if !ok {
			return "", false, nil
		}
		if in.DocumentPath == "" {
			return "", true, nil
		}
		return lastSegments(in.DocumentPath, params[0]), true, nil
	},
}

var documentParentPath = &PatternResolver{
	Info: []TagInfo{
		{"documentParentPath", "Ancestor directories of the active document, farthest to closest depth"},
		{"documentParentPath:X:Y", "Ancestor directories of the active document from depth Y down to depth X"},
	},
	TryResolve: func(tag string, in *Input) (string, bool, error) {
		closest, farthest, ok := depthParams(tag, "documentParentPath", in)
		if !ok {
			return "", false, nil
		}
		if in.DocumentPath == "" {
			return "", true, nil
		}
		return ancestorRange(in.DocumentPath, closest, farthest), true, nil
	},
}

var workspaceDirPath = &PatternResolver{
	Info: []TagInfo{
		{"path", "Full path of the workspace directory"},
		{"path:N", "Last N segments of the workspace directory"},
	},
	TryResolve: func(tag string, in *Input) (string, bool, error) {
		var n int
		if tag == "path" {
			n = -1
		} else {
			params, ok := parseParams(tag, "path", 1)
			if !ok {
				return "", false, nil
			}
			n = params[0]
		}
		if in.WorkspacePath == "" {
			return "", true, nil
		}
		dir := filepath.Dir(in.WorkspacePath)
		if n < 0 {
			return dir, true, nil
		}
		return lastSegments(dir, n), true, nil
	},
}

// depthParams parses "name", "name:X" or "name:X:Y" into a closest/farthest
// pair, defaulting to the settings depths.
func depthParams(tag, name string, in *Input) (closest, farthest int, ok bool) {
	closest, farthest = in.depths()
	if tag == name {
		return closest, farthest, true
	}
	params, ok := parseParams(tag, name, 2)
	if !ok {
		return 0, 0, false
	}
	closest = params[0]
	if len(params) == 2 {
		farthest = params[1]
	} else {
		farthest = closest
	}
	return closest, farthest, true
}

// -----------------------------------------------------------------------------
// 2. Parent / ancestor resolvers
// -----------------------------------------------------------------------------

var parentPath = &PatternResolver{
	Info: []TagInfo{
		{"parentPath", "Ancestor directories of the workspace between the configured depths"},
		{"parentPath:X:Y", "Ancestor directories of the workspace from depth Y down to depth X"},
	},
	TryResolve: func(tag string, in *Input) (string, bool, error) {
		closest, farthest, ok := depthParams(tag, "parentPath", in)
		if !ok {
			return "", false, nil
		}
		if in.WorkspacePath == "" {
			return "", true, nil
		}
		return ancestorRange(in.WorkspacePath, closest, farthest), true, nil
	},
}

var parentDir = &PatternResolver{
	Info: []TagInfo{
		{"parent", "Workspace ancestor directory at the closest configured depth"},
		{"parent:N", "Workspace ancestor directory at depth N"},
	},
	TryResolve: func(tag string, in *Input) (string, bool, error) {
		depth, _ := in.depths()
		if tag != "parent" {
			params, ok := parseParams(tag, "parent", 1)
			if !ok {
				return "", false, nil
			}
			depth = params[0]
		}
		if in.WorkspacePath == "" {
			return "", true, nil
		}
		return ancestorRange(in.WorkspacePath, depth, depth), true, nil
	},
}

// -----------------------------------------------------------------------------
// 3. IDE and platform resolvers
// -----------------------------------------------------------------------------

var ideName = &NamedResolver{
	Name:        "ideName",
	Description: "Host display name, including any elevation suffix",
	Resolve:     func(in *Input) (string, error) { return in.HostName, nil },
}

var elevationSuffix = &NamedResolver{
	Name:        "elevationSuffix",
	Description: "Elevation suffix of the host name, e.g. \" (Administrator)\"",
	Resolve:     func(in *Input) (string, error) { return in.ElevationSuffix, nil },
}

func majorVersion(version string) string {
	major, _, _ := strings.Cut(version, ".")
	return major
}

var hostMajorVersion = &NamedResolver{
	Name:        "vsMajorVersion",
	Description: "Major version of the host",
	Resolve:     func(in *Input) (string, error) { return majorVersion(in.HostVersion), nil },
}

// versionYears maps host major versions to their marketing year.
var versionYears = map[string]string{
	"8":  "2005",
	"9":  "2008",
	"10": "2010",
	"11": "2012",
	"12": "2013",
	"14": "2015",
	"15": "2017",
	"16": "2019",
	"17": "2022",
}

var hostMajorVersionYear = &NamedResolver{
	Name:        "vsMajorVersionYear",
	Description: "Release year of the host major version",
	Resolve: func(in *Input) (string, error) {
		major := majorVersion(in.HostVersion)
		if year, ok := versionYears[major]; ok {
			return year, nil
		}
		return "", fmt.Errorf("no release year known for host version %q", in.HostVersion)
	},
}

var platformName = &NamedResolver{
	Name:        "platformName",
	Description: "Active build platform",
	Resolve:     func(in *Input) (string, error) { return in.PlatformName, nil },
}

var configurationName = &NamedResolver{
	Name:        "configurationName",
	Description: "Active build configuration",
	Resolve:     func(in *Input) (string, error) { return in.ConfigurationName, nil },
}

// -----------------------------------------------------------------------------
// 4. Version-control and workspace resolvers
// -----------------------------------------------------------------------------

var gitBranchName = &NamedResolver{
	Name:        "gitBranchName",
	Description: "Current git branch of the workspace",
	Resolve: func(in *Input) (string, error) {
		dir := in.vcsDir()
		if dir == "" {
			return "", nil
		}
		b, _ := vcs.GitBranch(dir)
		return b, nil
	},
}

var hgBranchName = &NamedResolver{
	Name:        "hgBranchName",
	Description: "Current Mercurial branch of the workspace",
	Resolve: func(in *Input) (string, error) {
		dir := in.vcsDir()
		if dir == "" {
			return "", nil
		}
		b, _ := vcs.HgBranch(dir)
		return b, nil
	},
}

var svnURL = &NamedResolver{
	Name:        "svnUrl",
	Description: "Repository-relative Subversion URL of the workspace",
	Resolve: func(in *Input) (string, error) {
		dir := in.vcsDir()
		if dir == "" {
			return "", nil
		}
		u, _ := vcs.SVNURL(in.Ctx, dir)
		return u, nil
	},
}

var workspaceFileName = &NamedResolver{
	Name:        "workspaceFileName",
	Description: "File name of the workspace, with extension",
	Resolve: func(in *Input) (string, error) {
		if in.WorkspacePath == "" {
			return "", nil
		}
		return filepath.Base(in.WorkspacePath), nil
	},
}

// -----------------------------------------------------------------------------
// 5. Process and environment resolvers
// -----------------------------------------------------------------------------

var currentPID = sync.OnceValue(os.Getpid)

var processID = &NamedResolver{
	Name:        "vsProcessId",
	Description: "Process id of the host",
	Resolve: func(in *Input) (string, error) {
		if in.ProcessID > 0 {
			return strconv.Itoa(in.ProcessID), nil
		}
		return strconv.Itoa(currentPID()), nil
	},
}

var envVar = &PatternResolver{
	Info: []TagInfo{{"env:NAME", "Value of environment variable NAME (empty when unset)"}},
	TryResolve: func(tag string, in *Input) (string, bool, error) {
		name, found := strings.CutPrefix(tag, "env:")
		if !found || name == "" {
			return "", false, nil
		}
		v, _ := in.Getenv(name)
		return v, true, nil
	},
}

var debuggedProcessesArgs = &NamedResolver{
	Name:        "debuggedProcessesArgs",
	Description: "Command-line arguments of the processes being debugged",
	Resolve: func(in *Input) (string, error) {
		return strings.Join(in.DebuggedProcessesArgs, " "), nil
	},
}

// -----------------------------------------------------------------------------
// 6. Catch-all
// -----------------------------------------------------------------------------

var branchName = &PatternResolver{
	Info: []TagInfo{{"branchName", "Current branch of whichever VCS manages the workspace"}},
	TryResolve: func(tag string, in *Input) (string, bool, error) {
		if tag != "branchName" {
			return "", false, nil
		}
		dir := in.vcsDir()
		if dir == "" {
			return "", true, nil
		}
		if b, ok := vcs.Branch(dir); ok {
			return b, true, nil
		}
		if u, ok := vcs.SVNURL(in.Ctx, dir); ok {
			return u, true, nil
		}
		return "", true, nil
	},
}
