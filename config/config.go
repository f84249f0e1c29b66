// Package config has the configuration for the stub generator and the tab
// manifest command
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is the deployment flavour, it only changes logging defaults
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	}
	return "dev"
}

// ParseEnvironment converts an ENV value, defaulting to EnvDevelopment on error
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

// LowPriorityMode controls where low-priority presentations end up
type LowPriorityMode string

const (
	// LowPrioritySubfolder writes them under the low-priority directory
	LowPrioritySubfolder LowPriorityMode = "subfolder"
	// LowPriorityFlag keeps them in their section folder with a lowPriority flag
	LowPriorityFlag LowPriorityMode = "flag"
)

// Config holds all application configuration
type Config struct {
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes

	// Inputs
	PresentationListPath string
	ClinicalIndexPath    string
	NonClinicalIndexPath string // optional
	SchemaPath           string // optional, default symptom keys when empty
	ProfilePath          string // optional, built-in profile when empty
	DataDirs             []string

	// Stub generation
	OutputBaseDir      string
	LowPriorityMode    LowPriorityMode
	IncludeFrequency   bool
	RebuildExisting    bool
	BackfillOnly       bool
	SymptomPlaceholder string
	ReportPath         string
	ReportHTMLPath     string // optional
	MetricsTextfile    string // optional

	// Tab manifest
	TemplatesDir       string
	TemplateGlob       string
	ManifestOutputPath string
	ManifestColumns    int
}

// LoadDotEnv reads .env from the working directory, then from the directory
// of the executable. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	cfg := &Config{
		Env:               env,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default

		PresentationListPath: getEnvWithDefault("PRESENTATION_LIST_PATH", "Presentation_list.json"),
		ClinicalIndexPath:    getEnvWithDefault("CLINICAL_INDEX_PATH", "clinical_index.json"),
		NonClinicalIndexPath: os.Getenv("NONCLINICAL_INDEX_PATH"),
		SchemaPath:           os.Getenv("SCHEMA_PATH"),
		ProfilePath:          os.Getenv("PROFILE_PATH"),
		DataDirs:             filepath.SplitList(os.Getenv("DATA_DIRS")),

		OutputBaseDir:      getEnvWithDefault("OUTPUT_BASE_DIR", filepath.Join("data", "presentations")),
		LowPriorityMode:    LowPriorityMode(strings.ToLower(getEnvWithDefault("LOW_PRIORITY_MODE", string(LowPrioritySubfolder)))),
		IncludeFrequency:   getBoolEnvWithDefault("INCLUDE_FREQUENCY", true),
		RebuildExisting:    getBoolEnvWithDefault("REBUILD_EXISTING", false),
		BackfillOnly:       getBoolEnvWithDefault("BACKFILL_ONLY", false),
		SymptomPlaceholder: getEnvWithDefault("SYMPTOM_PLACEHOLDER", "n/a"),
		ReportPath:         getEnvWithDefault("REPORT_PATH", "stub_report.md"),
		ReportHTMLPath:     os.Getenv("REPORT_HTML_PATH"),
		MetricsTextfile:    os.Getenv("METRICS_TEXTFILE"),

		TemplatesDir:       getEnvWithDefault("TEMPLATES_DIR", "."),
		TemplateGlob:       getEnvWithDefault("TEMPLATE_GLOB", "template_*.json"),
		ManifestOutputPath: getEnvWithDefault("MANIFEST_OUTPUT_PATH", "tabs.json"),
		ManifestColumns:    getIntEnvWithDefault("MANIFEST_COLUMNS", 3),
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks every configuration value. It is also called after
// command-line flags have been applied.
func Validate(cfg *Config) error {
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateLowPriorityMode(cfg.LowPriorityMode); err != nil {
		return fmt.Errorf("invalid LOW_PRIORITY_MODE: %w", err)
	}

	if cfg.RebuildExisting && cfg.BackfillOnly {
		return fmt.Errorf("REBUILD_EXISTING and BACKFILL_ONLY cannot both be enabled")
	}

	if strings.TrimSpace(cfg.OutputBaseDir) == "" {
		return fmt.Errorf("OUTPUT_BASE_DIR cannot be empty")
	}

	if strings.TrimSpace(cfg.PresentationListPath) == "" {
		return fmt.Errorf("PRESENTATION_LIST_PATH cannot be empty")
	}

	if strings.TrimSpace(cfg.SymptomPlaceholder) == "" {
		return fmt.Errorf("SYMPTOM_PLACEHOLDER cannot be empty")
	}

	if err := validateColumns(cfg.ManifestColumns); err != nil {
		return fmt.Errorf("invalid MANIFEST_COLUMNS: %w", err)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

func validateLowPriorityMode(mode LowPriorityMode) error {
	switch mode {
	case LowPrioritySubfolder, LowPriorityFlag:
		return nil
	}
	return fmt.Errorf("LOW_PRIORITY_MODE must be one of: [subfolder flag], got: %s", mode)
}

func validateColumns(columns int) error {
	if columns < 1 || columns > 12 {
		return fmt.Errorf("MANIFEST_COLUMNS must be between 1 and 12, got: %d", columns)
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnvWithDefault accepts the values understood by strconv.ParseBool
func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"PRESENTATION_LIST_PATH",
		"CLINICAL_INDEX_PATH",
		"NONCLINICAL_INDEX_PATH",
		"SCHEMA_PATH",
		"PROFILE_PATH",
		"DATA_DIRS",
		"OUTPUT_BASE_DIR",
		"LOW_PRIORITY_MODE",
		"INCLUDE_FREQUENCY",
		"REBUILD_EXISTING",
		"BACKFILL_ONLY",
		"SYMPTOM_PLACEHOLDER",
		"REPORT_PATH",
		"REPORT_HTML_PATH",
		"METRICS_TEXTFILE",
		"TEMPLATES_DIR",
		"TEMPLATE_GLOB",
		"MANIFEST_OUTPUT_PATH",
		"MANIFEST_COLUMNS",
	}
}
