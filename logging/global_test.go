package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giygas/clerkship-tools/config"
)

// resetLogging restores the global logger once the test ends
func resetLogging(t *testing.T) {
	t.Helper()
	saved := DefaultLoggingService
	savedDefault := slog.Default()
	t.Cleanup(func() {
		_ = Close()
		DefaultLoggingService = saved
		slog.SetDefault(savedDefault)
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLogLevel(tt.input)
			if got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetConsoleLogLevel(t *testing.T) {
	tests := []struct {
		name        string
		env         config.Environment
		logLevelStr string
		verbose     bool
		expected    slog.Level
	}{
		{"dev defaults to info", config.EnvDevelopment, "", false, slog.LevelInfo},
		{"dev verbose defaults to debug", config.EnvDevelopment, "", true, slog.LevelDebug},
		{"test quiet defaults to error", config.EnvTest, "", false, slog.LevelError},
		{"test verbose defaults to info", config.EnvTest, "", true, slog.LevelInfo},
		{"prod defaults to warn", config.EnvProduction, "", false, slog.LevelWarn},
		{"staging defaults to warn", config.EnvStaging, "", false, slog.LevelWarn},
		{"prod with debug override", config.EnvProduction, "debug", false, slog.LevelDebug},
		{"dev with error override", config.EnvDevelopment, "error", false, slog.LevelError},
		{"test with debug override (ignored)", config.EnvTest, "debug", false, slog.LevelError},
		{"test with debug override (ignored) verbose", config.EnvTest, "debug", true, slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetConsoleLogLevel(tt.env, tt.logLevelStr, tt.verbose)
			if got != tt.expected {
				t.Errorf("GetConsoleLogLevel(%v, %q, %v) = %v, want %v", tt.env, tt.logLevelStr, tt.verbose, got, tt.expected)
			}
		})
	}
}

func TestGetFileLogLevel(t *testing.T) {
	got := GetFileLogLevel()
	if got != slog.LevelDebug {
		t.Errorf("GetFileLogLevel() = %v, want %v", got, slog.LevelDebug)
	}
}

func TestPackageFunctionsWithoutInit(t *testing.T) {
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Must not panic when the logger was never initialized
	Info("info without init")
	Warn("warn without init")
	Error("error without init")
	Debug("debug without init")
	With("run_id", "x")

	if err := Close(); err != nil {
		t.Errorf("Close without init returned %v", err)
	}
}

func TestWithAttachesRunAttributes(t *testing.T) {
	resetLogging(t)
	var console bytes.Buffer
	InitLogger(Options{ConsoleLevel: slog.LevelInfo, Console: &console})

	Info("before with")
	With("run_id", "run-1", "command", "sync")
	Info("after with")
	slog.Warn("through slog default")

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 console lines, got %d: %q", len(lines), console.String())
	}
	if strings.Contains(lines[0], "run_id") {
		t.Errorf("record before With should not carry run_id: %s", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.Contains(line, "run_id=run-1") || !strings.Contains(line, "command=sync") {
			t.Errorf("record after With is missing attributes: %s", line)
		}
	}
}

func TestWithAccumulates(t *testing.T) {
	resetLogging(t)
	var console bytes.Buffer
	InitLogger(Options{ConsoleLevel: slog.LevelDebug, Console: &console})

	With("run_id", "run-2")
	With("presentation", "Cough")
	Debug("processing")

	out := console.String()
	if !strings.Contains(out, "run_id=run-2") || !strings.Contains(out, "presentation=Cough") {
		t.Errorf("expected both attribute sets, got %q", out)
	}
}

func TestInitFromConfigWritesJSONFile(t *testing.T) {
	resetLogging(t)
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := &config.Config{
		Env:               config.EnvTest,
		LogDir:            dir,
		LogRetentionWeeks: 1,
	}

	InitFromConfig(cfg, false)
	With("run_id", "run-3")
	Debug("file only record")
	Info("quiet on console in tests")

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "clerkship-*.log"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one log file in %s, got %v (%v)", dir, files, err)
	}
	content, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"msg":"file only record"`, `"msg":"quiet on console in tests"`, `"run_id":"run-3"`} {
		if !strings.Contains(string(content), want) {
			t.Errorf("log file is missing %s: %s", want, content)
		}
	}
}

func TestInitFromConfigVerboseConsoleLevel(t *testing.T) {
	resetLogging(t)
	cfg := &config.Config{Env: config.EnvDevelopment}

	InitFromConfig(cfg, true)

	if !DefaultLoggingService.Logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("verbose development logger should enable debug")
	}
}
