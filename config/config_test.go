package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OUTPUT_BASE_DIR", "/tmp/out")
	t.Setenv("LOW_PRIORITY_MODE", "FLAG")
	t.Setenv("INCLUDE_FREQUENCY", "false")
	t.Setenv("BACKFILL_ONLY", "1")
	t.Setenv("SYMPTOM_PLACEHOLDER", "TBD")
	t.Setenv("REPORT_HTML_PATH", "report.html")
	t.Setenv("DATA_DIRS", strings.Join([]string{"/a", "/b"}, string(os.PathListSeparator)))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.OutputBaseDir != "/tmp/out" {
		t.Errorf("Expected output dir /tmp/out, got %s", cfg.OutputBaseDir)
	}
	if cfg.LowPriorityMode != LowPriorityFlag {
		t.Errorf("Expected low priority mode flag, got %s", cfg.LowPriorityMode)
	}
	if cfg.IncludeFrequency {
		t.Error("Expected IncludeFrequency to be false")
	}
	if !cfg.BackfillOnly {
		t.Error("Expected BackfillOnly to be true")
	}
	if cfg.SymptomPlaceholder != "TBD" {
		t.Errorf("Expected placeholder TBD, got %s", cfg.SymptomPlaceholder)
	}
	if cfg.ReportHTMLPath != "report.html" {
		t.Errorf("Expected html report path report.html, got %s", cfg.ReportHTMLPath)
	}
	if len(cfg.DataDirs) != 2 || cfg.DataDirs[1] != "/b" {
		t.Errorf("Expected two data dirs, got %v", cfg.DataDirs)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.OutputBaseDir != filepath.Join("data", "presentations") {
		t.Errorf("Expected default output dir, got %s", cfg.OutputBaseDir)
	}
	if cfg.LowPriorityMode != LowPrioritySubfolder {
		t.Errorf("Expected default low priority mode subfolder, got %s", cfg.LowPriorityMode)
	}
	if !cfg.IncludeFrequency || cfg.RebuildExisting || cfg.BackfillOnly {
		t.Errorf("Unexpected default toggles: %+v", cfg)
	}
	if cfg.SymptomPlaceholder != "n/a" {
		t.Errorf("Expected default placeholder n/a, got %s", cfg.SymptomPlaceholder)
	}
	if cfg.ManifestColumns != 3 {
		t.Errorf("Expected default manifest columns 3, got %d", cfg.ManifestColumns)
	}
	if cfg.ReportHTMLPath != "" || cfg.MetricsTextfile != "" {
		t.Errorf("Expected optional outputs to be disabled, got %+v", cfg)
	}
	if len(cfg.DataDirs) != 0 {
		t.Errorf("Expected no data dirs, got %v", cfg.DataDirs)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		env      map[string]string
		expected string
	}{
		{"bad env", map[string]string{"ENV": "qa"}, "ENV must be one of"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL must be one of"},
		{"bad retention", map[string]string{"LOG_RETENTION_WEEKS": "60"}, "max 52 weeks"},
		{"small log file", map[string]string{"MAX_LOG_FILE_SIZE": "10"}, "too small"},
		{"bad low priority mode", map[string]string{"LOW_PRIORITY_MODE": "hide"}, "LOW_PRIORITY_MODE must be one of"},
		{"exclusive toggles", map[string]string{"REBUILD_EXISTING": "true", "BACKFILL_ONLY": "true"}, "cannot both be enabled"},
		{"bad columns", map[string]string{"MANIFEST_COLUMNS": "0"}, "between 1 and 12"},
		{"blank placeholder", map[string]string{"SYMPTOM_PLACEHOLDER": "  "}, "SYMPTOM_PLACEHOLDER cannot be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range GetEnvVars() {
				t.Setenv(key, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error containing %q", tc.expected)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{"test", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tt.input, err)
				}
				if env != tt.expected {
					t.Errorf("Expected %v, got %v", tt.expected, env)
				}
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}
