package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/giygas/clerkship-tools/config"
	"github.com/giygas/clerkship-tools/logging"
	"github.com/giygas/clerkship-tools/manifest"
	"github.com/giygas/clerkship-tools/runner"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clerkship",
		Short:         "Presentation stub generator and tab manifest builder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log more to the console")
	rootCmd.PersistentFlags().String("profile", "", "YAML profile (PROFILE_PATH)")
	rootCmd.PersistentFlags().StringSlice("data-dir", nil, "directory searched for missing inputs, repeatable (DATA_DIRS)")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "write Prometheus metrics to this file (METRICS_TEXTFILE)")

	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(manifestCmd())

	return rootCmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or update one JSON stub per presentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, runID, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logging.Close()

			if _, err := runner.Sync(cfg, runID); err != nil {
				logging.Error("Sync failed", "error", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("list", "", "presentation list (PRESENTATION_LIST_PATH)")
	f.String("clinical-index", "", "clinical etiology index (CLINICAL_INDEX_PATH)")
	f.String("nonclinical-index", "", "non-clinical etiology index (NONCLINICAL_INDEX_PATH)")
	f.String("schema", "", "symptom schema (SCHEMA_PATH)")
	f.StringP("output", "o", "", "output base directory (OUTPUT_BASE_DIR)")
	f.String("low-priority-mode", "", "subfolder or flag (LOW_PRIORITY_MODE)")
	f.Bool("include-frequency", true, "write item frequencies (INCLUDE_FREQUENCY)")
	f.Bool("rebuild", false, "recompute existing stubs, keeping extra keys (REBUILD_EXISTING)")
	f.Bool("backfill", false, "only fill missing symptom keys of existing stubs (BACKFILL_ONLY)")
	f.String("placeholder", "", "value used for backfilled symptom keys (SYMPTOM_PLACEHOLDER)")
	f.String("report", "", "markdown summary report (REPORT_PATH)")
	f.String("report-html", "", "HTML rendering of the summary report (REPORT_HTML_PATH)")
	cmd.MarkFlagsMutuallyExclusive("rebuild", "backfill")

	return cmd
}

func manifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Build tabs.json from the template files",
		Long: `Build tabs.json from the template files matched by --glob under --templates-dir.

Templates that cannot be read or parsed are logged and skipped. When no
template file matches, a warning is logged, nothing is written and the
command exits 0. When templates match but none of them loads, the command
fails with exit status 1 and the previous tabs.json is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logging.Close()

			_, err = runner.Manifest(cfg)
			if errors.Is(err, manifest.ErrNoTemplates) {
				logging.Warn("No template files found, manifest not written",
					"dir", cfg.TemplatesDir,
					"glob", cfg.TemplateGlob,
				)
				return nil
			}
			if err != nil {
				logging.Error("Manifest failed", "error", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("templates-dir", "", "directory holding the templates (TEMPLATES_DIR)")
	f.String("glob", "", "template file pattern, ** allowed (TEMPLATE_GLOB)")
	f.StringP("output", "o", "", "manifest path (MANIFEST_OUTPUT_PATH)")
	f.Int("columns", 0, "columns setting written to the manifest (MANIFEST_COLUMNS)")

	return cmd
}

// setup loads the configuration, applies the command-line flags on top of
// it, validates the result and starts logging with a fresh run id
func setup(cmd *cobra.Command) (*config.Config, string, error) {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, "", err
	}

	if err := config.Validate(cfg); err != nil {
		return nil, "", fmt.Errorf("configuration validation failed: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logging.InitFromConfig(cfg, verbose)

	runID := uuid.NewString()
	logging.With("run_id", runID, "command", cmd.Name())
	logging.Debug("Configuration loaded", "env", cfg.Env.String(), "output_dir", cfg.OutputBaseDir)

	return cfg, runID, nil
}

// applyFlags overrides cfg with every flag set on the command line. Flags
// not defined by the running command are ignored.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "profile":
			cfg.ProfilePath = f.Value.String()
		case "data-dir":
			cfg.DataDirs, err = flags.GetStringSlice("data-dir")
		case "metrics-textfile":
			cfg.MetricsTextfile = f.Value.String()
		case "list":
			cfg.PresentationListPath = f.Value.String()
		case "clinical-index":
			cfg.ClinicalIndexPath = f.Value.String()
		case "nonclinical-index":
			cfg.NonClinicalIndexPath = f.Value.String()
		case "schema":
			cfg.SchemaPath = f.Value.String()
		case "output":
			if flags.Lookup("templates-dir") != nil {
				cfg.ManifestOutputPath = f.Value.String()
			} else {
				cfg.OutputBaseDir = f.Value.String()
			}
		case "low-priority-mode":
			cfg.LowPriorityMode = config.LowPriorityMode(strings.ToLower(f.Value.String()))
		case "include-frequency":
			cfg.IncludeFrequency, err = flags.GetBool("include-frequency")
		case "rebuild":
			cfg.RebuildExisting, err = flags.GetBool("rebuild")
			if cfg.RebuildExisting {
				cfg.BackfillOnly = false
			}
		case "backfill":
			cfg.BackfillOnly, err = flags.GetBool("backfill")
			if cfg.BackfillOnly {
				cfg.RebuildExisting = false
			}
		case "placeholder":
			cfg.SymptomPlaceholder = f.Value.String()
		case "report":
			cfg.ReportPath = f.Value.String()
		case "report-html":
			cfg.ReportHTMLPath = f.Value.String()
		case "templates-dir":
			cfg.TemplatesDir = f.Value.String()
		case "glob":
			cfg.TemplateGlob = f.Value.String()
		case "columns":
			cfg.ManifestColumns, err = flags.GetInt("columns")
		}
	})
	return err
}
