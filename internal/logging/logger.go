// Package logging provides config-driven categorized logging for wintitle.
// Logging is controlled by debug_mode in the wintitle config - when false, every
// logger is a no-op. Log calls never panic and never return errors: diagnostics
// must not become a secondary failure source for the render path.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, configuration loading
	CategoryRender   Category = "render"   // Render passes, tag resolution
	CategorySettings Category = "settings" // Settings snapshots, override files
	CategoryParse    Category = "parse"    // Title parsing
	CategoryInstance Category = "instance" // Sibling instance disambiguation
	CategoryWatcher  Category = "watcher"  // File watching
	CategoryHost     Category = "host"     // Host adapters (sinks, peers)
)

// Config mirrors the logging section of config.LoggingConfig
// to avoid circular imports.
type Config struct {
	DebugMode  bool
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // empty = stderr
	Categories map[string]bool // per-category toggles, nil = all enabled
}

// Logger is a category-scoped printf-style logger. A Logger with no backing
// zap logger is a no-op.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	cfg     Config
	base    *zap.Logger
	loggers = make(map[Category]*Logger)
)

// Initialize (re)configures logging. It is safe to call again after a config
// reload; previously handed-out loggers keep their old backend until the next Get.
func Initialize(c Config) error {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		_ = base.Sync()
	}
	cfg = c
	base = nil
	loggers = make(map[Category]*Logger)

	if !c.DebugMode {
		return nil // Silent no-op in production mode
	}

	zc := zap.NewProductionConfig()
	if c.Format != "json" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(parseLevel(c.Level))
	zc.Sampling = nil
	if c.File != "" {
		zc.OutputPaths = []string{c.File}
		zc.ErrorOutputPaths = []string{c.File}
	} else {
		zc.OutputPaths = []string{"stderr"}
	}

	l, err := zc.Build(zap.WithCaller(false))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not build logger: %v\n", err)
		return fmt.Errorf("failed to build logger: %w", err)
	}
	base = l
	return nil
}

// UseLogger installs an already-built zap logger (tests, embedding hosts).
// Debug mode is switched on for all categories.
func UseLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	cfg = Config{DebugMode: true, Level: "debug"}
	base = l
	loggers = make(map[Category]*Logger)
}

// parseLevel maps a configured level name; an empty name means debug since
// the logger only exists in debug mode.
func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "", "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if !cfg.DebugMode {
		return false
	}
	if cfg.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := cfg.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	enabled := categoryEnabled(category) && base != nil
	mu.RUnlock()

	if !enabled {
		return &Logger{category: category}
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	if base == nil {
		return &Logger{category: category}
	}
	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Sync flushes the backing logger, ignoring errors (stderr cannot be synced on some platforms).
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

func (l *Logger) emit(fn func(string, ...interface{}), format string, args []interface{}) {
	defer func() {
		_ = recover()
	}()
	fn(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l == nil || l.sugar == nil {
		return
	}
	l.emit(l.sugar.Debugf, format, args)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l == nil || l.sugar == nil {
		return
	}
	l.emit(l.sugar.Infof, format, args)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l == nil || l.sugar == nil {
		return
	}
	l.emit(l.sugar.Warnf, format, args)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l == nil || l.sugar == nil {
		return
	}
	l.emit(l.sugar.Errorf, format, args)
}

// With returns a logger carrying extra structured fields (e.g. a render id).
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l == nil || l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootWarn logs a warning to the boot category
func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warn(format, args...)
}

// Render logs to the render category
func Render(format string, args ...interface{}) {
	Get(CategoryRender).Info(format, args...)
}

// RenderDebug logs debug to the render category
func RenderDebug(format string, args ...interface{}) {
	Get(CategoryRender).Debug(format, args...)
}

// RenderError logs an error to the render category
func RenderError(format string, args ...interface{}) {
	Get(CategoryRender).Error(format, args...)
}

// Settings logs to the settings category
func Settings(format string, args ...interface{}) {
	Get(CategorySettings).Info(format, args...)
}

// SettingsDebug logs debug to the settings category
func SettingsDebug(format string, args ...interface{}) {
	Get(CategorySettings).Debug(format, args...)
}

// SettingsWarn logs a warning to the settings category
func SettingsWarn(format string, args ...interface{}) {
	Get(CategorySettings).Warn(format, args...)
}

// ParseDebug logs debug to the parse category
func ParseDebug(format string, args ...interface{}) {
	Get(CategoryParse).Debug(format, args...)
}

// InstanceDebug logs debug to the instance category
func InstanceDebug(format string, args ...interface{}) {
	Get(CategoryInstance).Debug(format, args...)
}

// Watcher logs to the watcher category
func Watcher(format string, args ...interface{}) {
	Get(CategoryWatcher).Info(format, args...)
}

// WatcherDebug logs debug to the watcher category
func WatcherDebug(format string, args ...interface{}) {
	Get(CategoryWatcher).Debug(format, args...)
}

// WatcherError logs an error to the watcher category
func WatcherError(format string, args ...interface{}) {
	Get(CategoryWatcher).Error(format, args...)
}

// HostDebug logs debug to the host category
func HostDebug(format string, args ...interface{}) {
	Get(CategoryHost).Debug(format, args...)
}

// HostWarn logs a warning to the host category
func HostWarn(format string, args ...interface{}) {
	Get(CategoryHost).Warn(format, args...)
}
