package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giygas/clerkship-tools/config"
	"github.com/giygas/clerkship-tools/manifest"
)

// cleanEnv clears every configuration variable and keeps logs out of the
// working directory
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range config.GetEnvVars() {
		t.Setenv(key, "")
	}
	t.Setenv("ENV", "test")
	t.Setenv("LOG_DIR", t.TempDir())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func parseFlags(t *testing.T, cfg *config.Config, args ...string) {
	t.Helper()
	cmd, rest, err := newRootCmd().Find(args)
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(rest))
	require.NoError(t, applyFlags(cmd.Flags(), cfg))
}

func TestApplyFlagsSync(t *testing.T) {
	cfg := &config.Config{OutputBaseDir: "data/presentations", IncludeFrequency: true, BackfillOnly: true}

	parseFlags(t, cfg, "sync",
		"--output", "out",
		"--rebuild",
		"--low-priority-mode", "flag",
		"--include-frequency=false",
		"--data-dir", "a", "--data-dir", "b",
		"--profile", "profile.yaml",
		"--report-html", "report.html",
	)

	assert.Equal(t, "out", cfg.OutputBaseDir)
	assert.True(t, cfg.RebuildExisting)
	assert.False(t, cfg.BackfillOnly)
	assert.Equal(t, config.LowPriorityFlag, cfg.LowPriorityMode)
	assert.False(t, cfg.IncludeFrequency)
	assert.Equal(t, []string{"a", "b"}, cfg.DataDirs)
	assert.Equal(t, "profile.yaml", cfg.ProfilePath)
	assert.Equal(t, "report.html", cfg.ReportHTMLPath)
}

func TestApplyFlagsManifest(t *testing.T) {
	cfg := &config.Config{OutputBaseDir: "data/presentations", ManifestColumns: 3}

	parseFlags(t, cfg, "manifest", "-o", "public/tabs.json", "--columns", "4", "--glob", "**/template_*.json")

	assert.Equal(t, "public/tabs.json", cfg.ManifestOutputPath)
	assert.Equal(t, "data/presentations", cfg.OutputBaseDir)
	assert.Equal(t, 4, cfg.ManifestColumns)
	assert.Equal(t, "**/template_*.json", cfg.TemplateGlob)
}

func TestApplyFlagsLowPriorityModeIgnoresCase(t *testing.T) {
	for _, value := range []string{"FLAG", "Flag", "flag"} {
		t.Run(value, func(t *testing.T) {
			cfg := &config.Config{LowPriorityMode: config.LowPrioritySubfolder}

			parseFlags(t, cfg, "sync", "--low-priority-mode", value)

			assert.Equal(t, config.LowPriorityFlag, cfg.LowPriorityMode)
		})
	}
}

func TestApplyFlagsKeepsUnsetValues(t *testing.T) {
	cfg := &config.Config{IncludeFrequency: false, SymptomPlaceholder: "TBD"}

	parseFlags(t, cfg, "sync", "--verbose")

	assert.False(t, cfg.IncludeFrequency)
	assert.Equal(t, "TBD", cfg.SymptomPlaceholder)
}

func TestSyncCommand(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "list.json"), `{"Clinical Presentations": ["Cough"]}`)
	writeFile(t, filepath.Join(dir, "clinical.json"), `{"Cough": {"Respiratory": ["Asthma"]}}`)

	root := newRootCmd()
	root.SetArgs([]string{"sync",
		"--list", filepath.Join(dir, "list.json"),
		"--clinical-index", filepath.Join(dir, "clinical.json"),
		"--output", filepath.Join(dir, "out"),
		"--report", filepath.Join(dir, "report.md"),
	})
	require.NoError(t, root.Execute())

	_, err := os.Stat(filepath.Join(dir, "out", "clinical", "cough.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "report.md"))
	assert.NoError(t, err)
}

func TestSyncCommandMissingInput(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()

	root := newRootCmd()
	root.SetArgs([]string{"sync", "--list", filepath.Join(dir, "missing.json"), "--output", filepath.Join(dir, "out")})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRESENTATION_LIST_PATH")
}

func TestSyncCommandRejectsInvalidFlags(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		contains string
	}{
		{"both modes", []string{"sync", "--rebuild", "--backfill"}, "rebuild"},
		{"low priority mode", []string{"sync", "--low-priority-mode", "bogus"}, "LOW_PRIORITY_MODE"},
		{"columns", []string{"manifest", "--columns", "0"}, "MANIFEST_COLUMNS"},
		{"arguments", []string{"sync", "extra"}, "unknown command"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanEnv(t)
			root := newRootCmd()
			root.SetArgs(tc.args)
			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestManifestCommand(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "template_ros.json"), `{"modes": ["ROS"]}`)

	root := newRootCmd()
	root.SetArgs([]string{"manifest", "--templates-dir", dir, "-o", filepath.Join(dir, "tabs.json")})
	require.NoError(t, root.Execute())

	_, err := os.Stat(filepath.Join(dir, "tabs.json"))
	assert.NoError(t, err)
}

func TestManifestCommandWithoutTemplates(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()

	root := newRootCmd()
	root.SetArgs([]string{"manifest", "--templates-dir", dir, "-o", filepath.Join(dir, "tabs.json")})
	require.NoError(t, root.Execute())

	_, err := os.Stat(filepath.Join(dir, "tabs.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestManifestCommandWithoutValidTemplates(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "template_broken.json"), `{"modes": [`)

	root := newRootCmd()
	root.SetArgs([]string{"manifest", "--templates-dir", dir, "-o", filepath.Join(dir, "tabs.json")})
	err := root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrNoValidTemplates)

	_, err = os.Stat(filepath.Join(dir, "tabs.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestManifestHelpDescribesExitStatus(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"manifest"})
	require.NoError(t, err)

	assert.Contains(t, cmd.Long, "exits 0")
	assert.Contains(t, cmd.Long, "exit status 1")
}
