package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"wintitle/internal/config"
	"wintitle/internal/hostctx"
	"wintitle/internal/pattern"
	"wintitle/internal/settings"
	"wintitle/internal/tags"
	"wintitle/internal/titleparse"
)

var previewHost hostFlags

// previewCmd is the interactive pattern editor
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Edit a pattern and watch the rendered title update live",
	Long: `Opens an editor for a pattern. The title is re-rendered on every keystroke
for the host context given by the flags, and parsed back so you can check
that sibling instances will recognize the workspace.

Keys: tab cycles the debugger mode, enter prints the pattern and exits, esc quits.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewHost.register(previewCmd)
}

// previewModel is the bubbletea model of the pattern editor.
type previewModel struct {
	input  textinput.Model
	engine *pattern.Engine
	set    *settings.Snapshot
	snap   hostctx.Snapshot
	base   string

	chosen string
	done   bool
}

var previewModes = []hostctx.Mode{hostctx.ModeDesign, hostctx.ModeBreak, hostctx.ModeRunning}

func newPreviewModel(cfg *config.Config, set *settings.Snapshot, snap hostctx.Snapshot, base string) previewModel {
	in := textinput.New()
	in.Placeholder = "[solutionName] - [ideName]"
	in.Prompt = "pattern> "
	in.CharLimit = 256
	in.Width = 72
	if p, ok := set.PatternFor(snap.Mode); ok {
		in.SetValue(p)
	} else {
		in.SetValue(cfg.Patterns.Design)
	}
	in.Focus()

	return previewModel{
		input:  in,
		engine: pattern.NewEngine(nil),
		set:    set,
		snap:   snap,
		base:   base,
	}
}

func (m previewModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.chosen = m.input.Value()
			m.done = true
			return m, tea.Quit
		case tea.KeyTab:
			m.snap.Mode = nextMode(m.snap.Mode)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func nextMode(mode hostctx.Mode) hostctx.Mode {
	for i, md := range previewModes {
		if md == mode {
			return previewModes[(i+1)%len(previewModes)]
		}
	}
	return hostctx.ModeDesign
}

// rendered renders the current pattern.
func (m previewModel) rendered() string {
	snap := m.snap
	in := tags.NewInput(context.Background(), &snap, m.set)
	return m.engine.Render(m.input.Value(), in)
}

func (m previewModel) View() string {
	if m.done {
		return ""
	}
	title := m.rendered()
	in := tags.NewInput(context.Background(), &m.snap, m.set)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("wintitle preview") + "  " + helpStyle.Render("mode "+m.snap.Mode.String()) + "\n\n")
	sb.WriteString(m.input.View() + "\n\n")
	sb.WriteString(boxStyle.Render(valueStyle.Render(title)) + "\n\n")

	name, ok := titleparse.ParseWorkspaceName(title, m.base, m.set.AppendedMarker)
	sb.WriteString(field("workspace", name, ok) + "\n")
	state, ok := titleparse.ParseState(title, m.base, m.set.AppendedMarker)
	sb.WriteString(field("state", state, ok) + "\n")
	if missing := m.engine.Unresolved(m.input.Value(), in); len(missing) > 0 {
		sb.WriteString(missStyle.Render("unknown tags: "+strings.Join(missing, ", ")) + "\n")
	}
	sb.WriteString("\n" + helpStyle.Render("tab: mode  enter: print pattern  esc: quit"))
	return sb.String()
}

func runPreview(cmd *cobra.Command, args []string) error {
	src, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := previewHost.snapshot()
	if err != nil {
		return err
	}
	cfg := src.Current()
	set := settings.NewStore(src).Get(snap.WorkspacePath)
	snap.HostName, snap.ElevationSuffix = resolveHost(&previewHost, cfg.AppendedMarker)

	final, err := tea.NewProgram(newPreviewModel(cfg, set, snap, previewHost.baseName)).Run()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if m, ok := final.(previewModel); ok && m.chosen != "" {
		fmt.Fprintln(cmd.OutOrStdout(), m.chosen)
	}
	return nil
}
