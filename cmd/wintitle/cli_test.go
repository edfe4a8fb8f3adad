package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wintitle/internal/config"
	"wintitle/internal/host"
	"wintitle/internal/hostctx"
	"wintitle/internal/settings"
	"wintitle/internal/tags"
)

// setup points the CLI at an empty config location and a silent logger.
func setup(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	dir := t.TempDir()
	old := configPath
	configPath = filepath.Join(dir, "config.yaml")
	t.Cleanup(func() { configPath = old })
	t.Setenv("WINTITLE_APPENDED_MARKER", "*")
	return dir
}

func outputCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

func withRenderFlags(t *testing.T, fn func()) {
	t.Helper()
	saved, savedPattern, savedPeers := renderHost, renderPattern, renderPeersDir
	t.Cleanup(func() { renderHost, renderPattern, renderPeersDir = saved, savedPattern, savedPeers })
	fn()
}

func TestRunRender(t *testing.T) {
	setup(t)
	withRenderFlags(t, func() {
		renderHost.workspace = "/src/MyApp.sln"
		renderHost.mode = "break"
	})

	cmd, buf := outputCmd()
	require.NoError(t, runRender(cmd, nil))
	assert.Equal(t, "MyApp (Debugging) - Microsoft Visual Studio *\n", buf.String())
}

func TestRunRender_Pattern(t *testing.T) {
	setup(t)
	withRenderFlags(t, func() {
		renderHost.workspace = "/src/MyApp.sln"
		renderPattern = "[solutionName] | [configurationName] | [nope]"
	})

	cmd, buf := outputCmd()
	require.NoError(t, runRender(cmd, nil))
	assert.Equal(t, "MyApp | Debug | [nope] *\n", buf.String())
}

func TestRunRender_UnknownMode(t *testing.T) {
	setup(t)
	withRenderFlags(t, func() { renderHost.mode = "sleeping" })

	cmd, _ := outputCmd()
	assert.Error(t, runRender(cmd, nil))
}

func TestRunRender_SiblingPeers(t *testing.T) {
	dir := setup(t)
	cfg := config.DefaultConfig()
	cfg.Patterns.Design = "custom [solutionName] - [ideName]"
	require.NoError(t, cfg.Save(configPath))

	peersDir := filepath.Join(dir, "peers")
	require.NoError(t, os.MkdirAll(peersDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(peersDir, "999.title"), []byte("MyApp - Microsoft Visual Studio *"), 0644))

	withRenderFlags(t, func() {
		renderHost.workspace = "/src/MyApp.sln"
		renderHost.pid = 4242
		renderPeersDir = peersDir
	})

	cmd, buf := outputCmd()
	require.NoError(t, runRender(cmd, nil))
	assert.Equal(t, "MyApp - Microsoft Visual Studio *\n", buf.String())

	published, err := os.ReadFile(filepath.Join(peersDir, "4242.title"))
	require.NoError(t, err)
	assert.Equal(t, "MyApp - Microsoft Visual Studio *", string(published))
}

func TestRunRender_SiblingOtherWorkspace(t *testing.T) {
	dir := setup(t)
	cfg := config.DefaultConfig()
	cfg.Patterns.Design = "custom [solutionName] - [ideName]"
	require.NoError(t, cfg.Save(configPath))

	peersDir := filepath.Join(dir, "peers")
	require.NoError(t, os.MkdirAll(peersDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(peersDir, "999.title"), []byte("Other - Microsoft Visual Studio *"), 0644))

	withRenderFlags(t, func() {
		renderHost.workspace = "/src/MyApp.sln"
		renderHost.pid = 4242
		renderPeersDir = peersDir
	})

	cmd, buf := outputCmd()
	require.NoError(t, runRender(cmd, nil))
	assert.Equal(t, "custom MyApp - Microsoft Visual Studio *\n", buf.String())
}

func TestNewController_PeersRegistry(t *testing.T) {
	dir := setup(t)
	src, err := loadConfig()
	require.NoError(t, err)
	var hf hostFlags
	hf.baseName = "Microsoft Visual Studio"

	_, peers, err := newController(src, &hf, hostctx.Snapshot{}, host.NewTerminalSink(io.Discard), "")
	require.NoError(t, err)
	assert.Nil(t, peers)

	peersDir := filepath.Join(dir, "peers")
	_, peers, err = newController(src, &hf, hostctx.Snapshot{}, host.NewTerminalSink(io.Discard), peersDir)
	require.NoError(t, err)
	require.NotNil(t, peers)
	assert.Equal(t, peersDir, peers.Dir())

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, peers, err = newController(src, &hf, hostctx.Snapshot{}, host.NewTerminalSink(io.Discard), filepath.Join(blocker, "peers"))
	assert.Error(t, err)
	assert.Nil(t, peers)
}

func TestDefaultConfigPath_FromDotEnv(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "from-dotenv.yaml")
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WINTITLE_CONFIG="+want+"\n"), 0644))

	t.Setenv("WINTITLE_CONFIG", "")
	os.Unsetenv("WINTITLE_CONFIG")
	savedPath, savedEnv, savedVerbose := configPath, envFiles, verbose
	t.Cleanup(func() { configPath, envFiles, verbose = savedPath, savedEnv, savedVerbose })
	configPath, envFiles, verbose = "", []string{envFile}, false

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, want, configPath)
}

func TestRunRender_InvalidConfig(t *testing.T) {
	setup(t)
	require.NoError(t, os.WriteFile(configPath, []byte("closest_parent_depth: 3\nfarthest_parent_depth: 1\n"), 0644))

	cmd, _ := outputCmd()
	err := runRender(cmd, nil)
	assert.ErrorContains(t, err, "invalid config")
}

func TestParseTitle(t *testing.T) {
	res, found := parseTitle("MyApp (Debugging) - Microsoft Visual Studio (Administrator) *", "Microsoft Visual Studio", "*")
	assert.Equal(t, parsedTitle{
		Title:     "MyApp (Debugging) - Microsoft Visual Studio (Administrator) *",
		Host:      "Microsoft Visual Studio (Administrator)",
		Elevation: " (Administrator)",
		Workspace: "MyApp",
		State:     "Debugging",
	}, res)
	assert.True(t, found["host"] && found["workspace"] && found["state"])

	_, found = parseTitle("Untitled - Notepad", "Microsoft Visual Studio", "*")
	assert.False(t, found["host"] || found["workspace"] || found["state"])
}

func TestRunParse_JSON(t *testing.T) {
	setup(t)
	saved := parseJSON
	parseJSON = true
	t.Cleanup(func() { parseJSON = saved })

	cmd, buf := outputCmd()
	require.NoError(t, runParse(cmd, []string{"MyApp", "-", "Microsoft", "Visual", "Studio", "*"}))
	assert.Contains(t, buf.String(), `"workspace": "MyApp"`)
}

func TestTags(t *testing.T) {
	md := tagsMarkdownTable(tags.DefaultRegistry())
	assert.Contains(t, md, "| `[solutionName]` |")
	assert.Contains(t, md, "| `[env:NAME]` |")

	saved := tagsMarkdown
	tagsMarkdown = false
	t.Cleanup(func() { tagsMarkdown = saved })
	cmd, buf := outputCmd()
	require.NoError(t, runTags(cmd, nil))
	assert.Contains(t, buf.String(), "[parentPath:X:Y]")
}

func TestConfigInit(t *testing.T) {
	setup(t)
	cmd, buf := outputCmd()

	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, buf.String(), configPath)
	loaded, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPatternDesign, loaded.Patterns.Design)

	assert.Error(t, runConfigInit(cmd, nil))

	configForce = true
	t.Cleanup(func() { configForce = false })
	assert.NoError(t, runConfigInit(cmd, nil))
}

func TestConfigShow(t *testing.T) {
	setup(t)
	cmd, buf := outputCmd()
	require.NoError(t, runConfigShow(cmd, nil))
	assert.Contains(t, buf.String(), "appended_marker:")
	assert.Contains(t, buf.String(), "refresh_interval: 5s")
}

func TestPreviewModel(t *testing.T) {
	cfg := config.DefaultConfig()
	set := &settings.Snapshot{
		WorkspacePath:  "/src/MyApp.sln",
		WorkspaceName:  "MyApp",
		AppendedMarker: "*",
	}
	snap := hostctx.Snapshot{
		HostName:      "Microsoft Visual Studio",
		WorkspacePath: "/src/MyApp.sln",
		Mode:          hostctx.ModeDesign,
	}
	var m tea.Model = newPreviewModel(cfg, set, snap, "Microsoft Visual Studio")

	view := m.View()
	assert.Contains(t, view, "MyApp - Microsoft Visual Studio *")
	assert.Contains(t, view, "mode design")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "mode break")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" [bogus]")})
	assert.Contains(t, m.View(), "unknown tags: bogus")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	pm := m.(previewModel)
	assert.True(t, strings.HasSuffix(pm.chosen, "[bogus]"))
	assert.Equal(t, "", pm.View())
}
