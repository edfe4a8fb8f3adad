package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"wintitle/internal/hostctx"
)

// hostFlags describe the host context for commands that render titles.
type hostFlags struct {
	baseName       string
	caption        string
	version        string
	workspace      string
	document       string
	windowCaption  string
	project        string
	docProject     string
	docProjectFile string
	startup        []string
	configuration  string
	platform       string
	mode           string
	pid            int
	debuggedArgs   []string
	localSame      int
}

func (f *hostFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.baseName, "host", "Microsoft Visual Studio", "Host application base name")
	fs.StringVar(&f.caption, "host-caption", "", "Host default window caption (default: the host name)")
	fs.StringVar(&f.version, "host-version", "17.0", "Host version")
	fs.StringVarP(&f.workspace, "workspace", "w", "", "Workspace (solution) file path")
	fs.StringVarP(&f.document, "document", "d", "", "Active document path")
	fs.StringVar(&f.windowCaption, "window-caption", "", "Active window caption")
	fs.StringVar(&f.project, "project", "", "Active project name")
	fs.StringVar(&f.docProject, "document-project", "", "Project owning the active document")
	fs.StringVar(&f.docProjectFile, "document-project-file", "", "Project file owning the active document")
	fs.StringSliceVar(&f.startup, "startup-project", nil, "Startup project paths relative to the workspace")
	fs.StringVar(&f.configuration, "configuration", "Debug", "Active build configuration")
	fs.StringVar(&f.platform, "platform", "Any CPU", "Active build platform")
	fs.StringVarP(&f.mode, "mode", "m", "design", "Debugger mode: design, break or running")
	fs.IntVar(&f.pid, "pid", 0, "Host process id (default: this process)")
	fs.StringSliceVar(&f.debuggedArgs, "debugged-args", nil, "Arguments of the debugged process")
	fs.IntVar(&f.localSame, "local-same-workspace", 1, "Windows in this process showing the workspace")
}

func (f *hostFlags) defaultCaption() string {
	if f.caption != "" {
		return f.caption
	}
	return f.baseName
}

// snapshot converts the flags into a host snapshot.
func (f *hostFlags) snapshot() (hostctx.Snapshot, error) {
	mode := hostctx.ParseMode(f.mode)
	if mode == hostctx.ModeUnknown {
		return hostctx.Snapshot{}, fmt.Errorf("unknown mode %q (want design, break or running)", f.mode)
	}
	snap := hostctx.Snapshot{
		HostVersion:           f.version,
		ProcessID:             f.pid,
		WorkspacePath:         absOrEmpty(f.workspace),
		DocumentPath:          absOrEmpty(f.document),
		ActiveWindowCaption:   f.windowCaption,
		ActiveProjectName:     f.project,
		DocumentProjectName:   f.docProject,
		DocumentProjectFile:   f.docProjectFile,
		StartupProjects:       f.startup,
		ConfigurationName:     f.configuration,
		PlatformName:          f.platform,
		LocalSameWorkspace:    f.localSame,
		DebuggedProcessesArgs: f.debuggedArgs,
		Mode:                  mode,
	}
	return snap, nil
}

func absOrEmpty(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
