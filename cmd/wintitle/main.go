package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wintitle/internal/config"
	"wintitle/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	envFiles   []string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wintitle",
	Short: "Pattern-driven window titles",
	Long: `wintitle computes window titles from patterns such as
"[solutionName] - [ideName]" and parses rendered titles back into their parts.

Tags in square brackets are replaced with values from the host context.
Run "wintitle tags" for the list of supported tags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zc := zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose {
			logging.UseLogger(logger)
		}
		config.LoadDotEnv(envFiles...)
		if configPath == "" {
			configPath = defaultConfigPath()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default $WINTITLE_CONFIG, else <user config dir>/wintitle/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment variables from these .env files (default .env)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultConfigPath is $WINTITLE_CONFIG, else <user config dir>/wintitle/config.yaml.
func defaultConfigPath() string {
	if p := os.Getenv("WINTITLE_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "wintitle.yaml"
	}
	return filepath.Join(dir, "wintitle", "config.yaml")
}

// loadConfig loads and validates the configuration file and, unless -v
// already installed the CLI logger, configures category logging from it.
func loadConfig() (*config.FileSource, error) {
	src, err := config.NewFileSource(configPath)
	if err != nil {
		return nil, err
	}
	if err := src.Current().Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	if !verbose {
		if err := logging.Initialize(src.Current().Logging.ToLogging()); err != nil {
			logger.Warn("category logging disabled", zap.Error(err))
		}
	}
	logger.Debug("configuration loaded", zap.String("path", configPath))
	return src, nil
}
