package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wintitle/internal/config"
	"wintitle/internal/controller"
	"wintitle/internal/host"
)

var (
	runHost     hostFlags
	runPeersDir string
)

// runCmd keeps the terminal title up to date
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep the terminal title updated until interrupted",
	Long: `Runs the title controller against this terminal: the title is rendered
immediately, re-rendered every refresh interval, and re-rendered when the
configuration file or an override file changes.

With --peers-dir, every instance publishes its title in the directory so that
instances showing the same workspace can see each other.`,
	Args: cobra.NoArgs,
	RunE: runController,
}

func init() {
	runHost.register(runCmd)
	runCmd.Flags().StringVar(&runPeersDir, "peers-dir", "", "Directory where instances publish their titles")
}

func runController(cmd *cobra.Command, args []string) error {
	src, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := runHost.snapshot()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, peers, err := newController(src, &runHost, snap, host.NewTerminalSink(cmd.OutOrStdout()), runPeersDir)
	if err != nil {
		return err
	}
	if peers != nil {
		defer func() {
			if err := peers.Remove(pidOrSelf(snap.ProcessID)); err != nil {
				logger.Warn("failed to withdraw title", zap.Error(err))
			}
		}()
	}

	w, err := config.NewWatcher()
	if err != nil {
		return err
	}
	watchFiles(w, src, c, snap.WorkspacePath)

	logger.Info("title controller running",
		zap.String("workspace", snap.WorkspacePath),
		zap.Duration("interval", src.Current().GetRefreshInterval()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.Start(gctx)
		<-gctx.Done()
		w.Stop()
		return nil
	})
	g.Go(func() error {
		return c.Run(gctx)
	})
	return g.Wait()
}

// watchFiles re-renders on configuration and override file changes.
func watchFiles(w *config.Watcher, src *config.FileSource, c *controller.Controller, workspace string) {
	w.Watch(src.Path(), func() {
		if err := src.Reload(); err != nil {
			logger.Warn("configuration reload failed", zap.Error(err))
		}
	})
	onOverride := func() { c.WorkspaceChanged() }
	if p := src.Current().Overrides.GlobalOverridesFile; p != "" {
		w.Watch(p, onOverride)
	}
	if p := config.WorkspaceOverridePath(workspace); p != "" {
		w.Watch(p, onOverride)
	}
}
