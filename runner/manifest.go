package runner

import (
	"time"

	"github.com/giygas/clerkship-tools/config"
	"github.com/giygas/clerkship-tools/logging"
	"github.com/giygas/clerkship-tools/manifest"
	"github.com/giygas/clerkship-tools/metrics"
)

// Manifest runs the manifest command: scan the templates, write tabs.json
// and the metrics textfile. manifest.ErrNoTemplates and
// manifest.ErrNoValidTemplates are returned unwrapped so callers can tell
// an empty project from a failure.
func Manifest(cfg *config.Config) (*manifest.Manifest, error) {
	start := time.Now()

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}

	m := metrics.NewRun("manifest")
	defer func() {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logging.Error("Failed to write metrics", "error", err)
		}
	}()

	mf, err := manifest.Build(manifest.Options{
		Dir:       cfg.TemplatesDir,
		Glob:      cfg.TemplateGlob,
		Columns:   cfg.ManifestColumns,
		HTMLPaths: profile.HTMLPaths,
		Priority:  profile.TabPriority,
	})
	if err != nil {
		return nil, err
	}
	m.ManifestTabs.Set(float64(len(mf.Tabs)))

	if err := manifest.Write(cfg.ManifestOutputPath, mf); err != nil {
		return nil, err
	}

	logging.Info("Tab manifest written",
		"path", cfg.ManifestOutputPath,
		"tabs", len(mf.Tabs),
		"modes", mf.Index.Modes,
		"chip_ids", len(mf.Index.AllChipIDs),
		"duration", time.Since(start).String(),
	)
	return mf, nil
}
