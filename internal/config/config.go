package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default patterns and values. These are also what a title falls back to when
// another instance already customizes the same workspace.
const (
	DefaultPatternDesign              = "[solutionName] - [ideName]"
	DefaultPatternBreak               = "[solutionName] (Debugging) - [ideName]"
	DefaultPatternRunning             = "[solutionName] (Running) - [ideName]"
	DefaultPatternDocumentNoWorkspace = "[documentName] - [ideName]"
	DefaultPatternNothingOpen         = "[ideName]"
	DefaultAppendedMarker             = "*"
	DefaultClosestParentDepth         = 1
	DefaultFarthestParentDepth        = 1
	DefaultRefreshInterval            = 5 * time.Second

	// WorkspaceOverrideSuffix is appended to a workspace file path to locate
	// its workspace-specific override file.
	WorkspaceOverrideSuffix = ".title.yaml"
)

// Config holds all wintitle configuration (the "global rules").
type Config struct {
	// Marker appended to every rendered title so customized titles can be recognized
	AppendedMarker string `yaml:"appended_marker"`

	// Mode-specific patterns
	Patterns PatternsConfig `yaml:"patterns"`

	// Ancestor directory window used by [parentPath] and [parent]
	ClosestParentDepth  int `yaml:"closest_parent_depth"`
	FarthestParentDepth int `yaml:"farthest_parent_depth"`

	// Rewrite titles even when a sibling instance already shows the same workspace
	AlwaysRewriteTitles bool `yaml:"always_rewrite_titles"`

	// Override files
	Overrides OverridesConfig `yaml:"overrides"`

	// Safety-net re-render period (e.g. "5s")
	RefreshInterval string `yaml:"refresh_interval"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// PatternsConfig holds the user patterns per situation.
type PatternsConfig struct {
	Design              string `yaml:"design"`
	Break               string `yaml:"break"`
	Running             string `yaml:"running"`
	DocumentNoWorkspace string `yaml:"document_no_workspace"`
	NothingOpen         string `yaml:"nothing_open"`
}

// OverridesConfig configures per-workspace override files.
type OverridesConfig struct {
	AllowWorkspaceOverrides bool   `yaml:"allow_workspace_overrides"`
	GlobalOverridesFile     string `yaml:"global_overrides_file"` // absolute path, empty = none
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AppendedMarker: DefaultAppendedMarker,
		Patterns: PatternsConfig{
			Design:              DefaultPatternDesign,
			Break:               DefaultPatternBreak,
			Running:             DefaultPatternRunning,
			DocumentNoWorkspace: DefaultPatternDocumentNoWorkspace,
			NothingOpen:         DefaultPatternNothingOpen,
		},
		ClosestParentDepth:  DefaultClosestParentDepth,
		FarthestParentDepth: DefaultFarthestParentDepth,
		Overrides: OverridesConfig{
			AllowWorkspaceOverrides: true,
		},
		RefreshInterval: DefaultRefreshInterval.String(),
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files (default ".env")
// into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("WINTITLE_APPENDED_MARKER"); ok {
		c.AppendedMarker = v
	}
	if v := os.Getenv("WINTITLE_GLOBAL_OVERRIDES"); v != "" {
		c.Overrides.GlobalOverridesFile = v
	}
	if v := os.Getenv("WINTITLE_ALWAYS_REWRITE"); v != "" {
		c.AlwaysRewriteTitles = parseBool(v, c.AlwaysRewriteTitles)
	}
	if v := os.Getenv("WINTITLE_DEBUG"); v != "" {
		c.Logging.DebugMode = parseBool(v, c.Logging.DebugMode)
	}
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

// GetRefreshInterval returns the periodic re-render interval as a duration.
func (c *Config) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return DefaultRefreshInterval
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ClosestParentDepth < 0 || c.FarthestParentDepth < 0 {
		return fmt.Errorf("parent depths must be non-negative (closest=%d, farthest=%d)",
			c.ClosestParentDepth, c.FarthestParentDepth)
	}
	if c.FarthestParentDepth < c.ClosestParentDepth {
		return fmt.Errorf("farthest_parent_depth (%d) must be >= closest_parent_depth (%d)",
			c.FarthestParentDepth, c.ClosestParentDepth)
	}
	if c.RefreshInterval != "" {
		if _, err := time.ParseDuration(c.RefreshInterval); err != nil {
			return fmt.Errorf("invalid refresh_interval %q: %w", c.RefreshInterval, err)
		}
	}
	if p := c.Overrides.GlobalOverridesFile; p != "" && !filepath.IsAbs(p) {
		return fmt.Errorf("global_overrides_file must be an absolute path: %s", p)
	}
	return nil
}

// WorkspaceOverridePath returns the workspace-specific override file for a
// workspace file path, or "" when no workspace is open.
func WorkspaceOverridePath(workspacePath string) string {
	if workspacePath == "" {
		return ""
	}
	return workspacePath + WorkspaceOverrideSuffix
}
