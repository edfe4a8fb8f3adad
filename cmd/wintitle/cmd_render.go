package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wintitle/internal/config"
	"wintitle/internal/controller"
	"wintitle/internal/host"
	"wintitle/internal/hostctx"
	"wintitle/internal/pattern"
	"wintitle/internal/settings"
	"wintitle/internal/tags"
	"wintitle/internal/titleparse"
)

var (
	renderHost     hostFlags
	renderPattern  string
	renderApply    bool
	renderPeersDir string
)

// renderCmd renders one title
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the title for a host context",
	Long: `Renders the title the controller would display for the given host context,
using the configured patterns and any override files for the workspace.

Examples:
  wintitle render -w ~/src/MyApp/MyApp.sln
  wintitle render -w MyApp.sln --mode break
  wintitle render -w MyApp.sln --pattern "[parentPath]\[solutionName] - [ideName]"`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderHost.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderPattern, "pattern", "p", "", "Render this pattern instead of the configured one")
	renderCmd.Flags().BoolVar(&renderApply, "apply", false, "Also set the terminal title")
	renderCmd.Flags().StringVar(&renderPeersDir, "peers-dir", "", "Directory where instances publish their titles")
}

func runRender(cmd *cobra.Command, args []string) error {
	src, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := renderHost.snapshot()
	if err != nil {
		return err
	}

	var title string
	if renderPattern != "" {
		title = renderDirect(cmd.Context(), src, &renderHost, snap, renderPattern)
	} else {
		out := io.Discard
		if renderApply {
			out = cmd.ErrOrStderr()
		}
		c, _, err := newController(src, &renderHost, snap, host.NewTerminalSink(out), renderPeersDir)
		if err != nil {
			return err
		}
		title, err = c.RenderOnce(contextOrBackground(cmd.Context()))
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), title)
	return nil
}

// newController wires a controller for a static host context. The peer
// registry is nil unless peersDir is set.
func newController(src config.Provider, hf *hostFlags, snap hostctx.Snapshot, sink hostctx.Sink, peersDir string) (*controller.Controller, *host.DirPeers, error) {
	opts := controller.Options{
		Host:    host.NewStatic(hf.baseName, hf.defaultCaption(), snap),
		Sink:    sink,
		Config:  src,
		SelfPID: pidOrSelf(snap.ProcessID),
	}
	var peers *host.DirPeers
	if peersDir != "" {
		var err error
		if peers, err = host.NewDirPeers(peersDir); err != nil {
			return nil, nil, err
		}
		opts.Peers = peers
		opts.Sink = &host.PublishingSink{Sink: sink, Peers: peers, PID: opts.SelfPID}
	}
	c, err := controller.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return c, peers, nil
}

// renderDirect renders pattern with the workspace settings but without
// instance disambiguation or pattern selection.
func renderDirect(ctx context.Context, src config.Provider, hf *hostFlags, snap hostctx.Snapshot, p string) string {
	set := settings.NewStore(src).Get(snap.WorkspacePath)
	snap.HostName, snap.ElevationSuffix = resolveHost(hf, src.Current().AppendedMarker)

	engine := pattern.NewEngine(nil)
	in := tags.NewInput(contextOrBackground(ctx), &snap, set)
	if missing := engine.Unresolved(p, in); len(missing) > 0 {
		logger.Warn("pattern has unknown tags", zap.Strings("tags", missing))
	}
	return engine.Render(p, in)
}

// resolveHost recovers the host display name from its default caption the
// way the controller does, falling back to the base name.
func resolveHost(hf *hostFlags, marker string) (name, elevation string) {
	name, ok := titleparse.ParseHostName(hf.defaultCaption(), hf.baseName, marker)
	if !ok || name == "" {
		return hf.baseName, ""
	}
	return name, titleparse.ElevationSuffix(name)
}

func pidOrSelf(pid int) int {
	if pid > 0 {
		return pid
	}
	return os.Getpid()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
