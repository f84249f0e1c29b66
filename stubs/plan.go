package stubs

import (
	"fmt"
	"path/filepath"

	"github.com/giygas/clerkship-tools/config"
	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/labels"
	"github.com/giygas/clerkship-tools/logging"
)

// Planner computes destination paths
type Planner struct {
	baseDir string
	profile *config.Profile
	mode    config.LowPriorityMode
}

// NewPlanner creates a planner writing below baseDir
func NewPlanner(baseDir string, profile *config.Profile, mode config.LowPriorityMode) *Planner {
	if profile == nil {
		profile = config.DefaultProfile()
	}
	return &Planner{baseDir: baseDir, profile: profile, mode: mode}
}

// Destination returns where the document of p goes:
// <base>/<section folder>/<slug>.json, or <base>/<low priority dir>/<slug>.json
// for low-priority presentations in subfolder mode.
func (pl *Planner) Destination(p entities.Presentation) (entities.Destination, error) {
	slug := labels.Slugify(p.Name)
	if slug == "" {
		return entities.Destination{}, fmt.Errorf("presentation %q in %q has an empty slug", p.Name, p.Section)
	}

	low := p.LowPriority || pl.profile.IsLowPriority(p.Name)

	folder := pl.profile.FolderFor(p.Section)
	if low && pl.mode == config.LowPrioritySubfolder {
		folder = pl.profile.LowPriorityDir
	}

	return entities.Destination{
		Presentation: p,
		Slug:         slug,
		Path:         filepath.Join(pl.baseDir, folder, slug+".json"),
		LowPriority:  low,
	}, nil
}

// Plan returns a destination per presentation in list order. An entry that
// repeats an earlier one (same name, same path) is dropped with a warning;
// distinct names sharing a path are left for the collision check.
func (pl *Planner) Plan(list entities.PresentationList) ([]entities.Destination, error) {
	type entryKey struct{ name, path string }
	seen := make(map[entryKey]bool)

	var dests []entities.Destination
	for _, p := range list.All() {
		d, err := pl.Destination(p)
		if err != nil {
			return nil, err
		}

		k := entryKey{p.Name, d.Path}
		if seen[k] {
			logging.Warn("Duplicate presentation entry skipped", "presentation", p.Name, "section", p.Section)
			continue
		}
		seen[k] = true
		dests = append(dests, d)
	}
	return dests, nil
}
