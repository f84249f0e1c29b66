// Package logging provides the slog setup shared by every command: text to
// the console, JSON to weekly rotating files.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/clerkship-tools/config"
)

type LoggingService struct {
	Logger *slog.Logger
	closer io.Closer
}

var DefaultLoggingService *LoggingService

var fallbackLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// InitLogger initializes the global logger instance
func InitLogger(opts Options) {
	logger, closer := SetupLogger(opts)
	DefaultLoggingService = &LoggingService{
		Logger: logger,
		closer: closer,
	}
	slog.SetDefault(logger)
}

// InitFromConfig initializes the global logger from the loaded configuration
func InitFromConfig(cfg *config.Config, verbose bool) {
	InitLogger(Options{
		Dir:            cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		ConsoleLevel:   GetConsoleLogLevel(cfg.Env, cfg.LogLevel, verbose),
		FileLevel:      GetFileLogLevel(),
	})
}

// With attaches attributes (such as the run id) to every following record
func With(args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return
	}
	DefaultLoggingService.Logger = DefaultLoggingService.Logger.With(args...)
	slog.SetDefault(DefaultLoggingService.Logger)
}

// Close flushes and closes the log file, if any
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.closer == nil {
		return nil
	}
	return DefaultLoggingService.closer.Close()
}

// parseLogLevel converts a LOG_LEVEL value, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// GetConsoleLogLevel returns the console level for an environment. Tests stay
// quiet unless verbose; staging and prod default to warn; an explicit
// LOG_LEVEL overrides the default outside tests.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// GetFileLogLevel returns the file level, files always get everything
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

func current() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallbackLogger
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}
