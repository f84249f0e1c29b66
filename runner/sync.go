// Package runner wires the loaders, resolver, builder and synchronizer into
// the two commands of the tool: sync and manifest.
package runner

import (
	"fmt"
	"time"

	"github.com/giygas/clerkship-tools/config"
	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/interfaces"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/logging"
	"github.com/giygas/clerkship-tools/metrics"
	"github.com/giygas/clerkship-tools/report"
	"github.com/giygas/clerkship-tools/resolver"
	"github.com/giygas/clerkship-tools/stubs"
	"github.com/giygas/clerkship-tools/stubsync"
	"github.com/giygas/clerkship-tools/validation"
)

// suggestionLimit caps the index keys suggested per unmatched presentation
const suggestionLimit = 3

// SyncMode maps the configuration toggles to a synchronizer mode
func SyncMode(cfg *config.Config) stubsync.Mode {
	switch {
	case cfg.RebuildExisting:
		return stubsync.ModeRebuild
	case cfg.BackfillOnly:
		return stubsync.ModeBackfill
	}
	return stubsync.ModeSkipExisting
}

// Syncer runs the stub generation pass over a presentation list
type Syncer struct {
	cfg       *config.Config
	planner   *stubs.Planner
	resolver  interfaces.KeyResolver
	sync      interfaces.Synchronizer
	validator interfaces.DataValidator
	metrics   *metrics.Run
	mode      stubsync.Mode
	runID     string
	now       func() time.Time
}

// NewSyncer creates a syncer with the default resolver, synchronizer and
// validator for cfg and profile. required is the ordered symptom key list,
// computed once per run.
func NewSyncer(cfg *config.Config, profile *config.Profile, required []string, m *metrics.Run, runID string) *Syncer {
	mode := SyncMode(cfg)
	return NewSyncerWithDI(
		cfg,
		stubs.NewPlanner(cfg.OutputBaseDir, profile, cfg.LowPriorityMode),
		resolver.New(profile.Aliases, profile.ClinicalSections),
		stubsync.New(mode, required, cfg.SymptomPlaceholder),
		validation.NewDataValidator(),
		m,
		mode,
		runID,
	)
}

// NewSyncerWithDI creates a syncer with injected dependencies
func NewSyncerWithDI(
	cfg *config.Config,
	planner *stubs.Planner,
	keyResolver interfaces.KeyResolver,
	sync interfaces.Synchronizer,
	validator interfaces.DataValidator,
	m *metrics.Run,
	mode stubsync.Mode,
	runID string,
) *Syncer {
	if m == nil {
		m = metrics.NewRun("sync")
	}
	return &Syncer{
		cfg:       cfg,
		planner:   planner,
		resolver:  keyResolver,
		sync:      sync,
		validator: validator,
		metrics:   m,
		mode:      mode,
		runID:     runID,
		now:       time.Now,
	}
}

// Run processes every presentation of in. Invalid list entries are skipped
// and listed in the report. Slug collisions abort the run before any file is
// written. A failure while
// writing a destination stops the run; the returned report still holds the
// outcomes recorded so far.
func (s *Syncer) Run(in *Inputs) (*report.Report, error) {
	start := time.Now()
	rep := &report.Report{
		RunID:         s.runID,
		GeneratedAt:   s.now(),
		Mode:          s.mode.String(),
		OutputBaseDir: s.cfg.OutputBaseDir,
		Outcomes:      []entities.Outcome{},
	}

	list, invalid := s.validList(in.List)

	dests, err := s.planner.Plan(list)
	if err != nil {
		return rep, fmt.Errorf("failed to plan destinations: %w", err)
	}

	if err := s.validator.CheckSlugCollisions(dests); err != nil {
		return rep, err
	}

	logging.Info("Starting stub synchronization",
		"presentations", len(dests),
		"mode", s.mode.String(),
		"output_dir", s.cfg.OutputBaseDir,
		"required_keys", len(in.Schema.Required),
	)

	var runErr error
	for _, dest := range dests {
		outcome := s.process(dest, in)
		rep.Outcomes = append(rep.Outcomes, outcome)

		if outcome.Err != nil {
			logging.Error("Failed to synchronize presentation",
				"presentation", dest.Presentation.Name,
				"path", dest.Path,
				"error", outcome.Err,
			)
			runErr = fmt.Errorf("failed to synchronize %q: %w", dest.Presentation.Name, outcome.Err)
			break
		}
	}

	rep.Quality = s.validator.ReportDataQuality(rep.Outcomes)
	rep.Quality.InvalidEntries = invalid
	rep.Suggestions = s.suggestions(rep.Outcomes, in)

	totals := rep.Totals()
	logging.Info("Stub synchronization completed",
		"duration", time.Since(start).String(),
		"created", totals.ByAction[entities.ActionCreated],
		"updated", totals.ByAction[entities.ActionUpdated],
		"backfilled", totals.ByAction[entities.ActionBackfilled],
		"skipped", totals.ByAction[entities.ActionSkipped],
		"no_index_match", totals.NoIndexMatch,
		"errors", totals.Errors,
	)

	if rep.Quality.HasIssues() {
		logging.Warn("Data quality issues found",
			"no_index_match", rep.Quality.NoIndexMatchCount,
			"empty_documents", rep.Quality.EmptyDocuments,
			"substring_matches", rep.Quality.SubstringMatchCount,
			"failed", len(rep.Quality.FailedPresentations),
			"invalid_entries", len(rep.Quality.InvalidEntries),
		)
	}

	return rep, runErr
}

// validList drops the entries the validator rejects, keeping section order
func (s *Syncer) validList(list entities.PresentationList) (entities.PresentationList, []string) {
	var valid entities.PresentationList
	invalid := []string{}
	for _, section := range list.Sections {
		kept := entities.Section{Name: section.Name}
		for _, p := range section.Presentations {
			if err := s.validator.ValidatePresentation(p); err != nil {
				logging.Warn("Skipping invalid presentation", "section", section.Name, "error", err)
				invalid = append(invalid, err.Error())
				continue
			}
			kept.Presentations = append(kept.Presentations, p)
		}
		valid.Sections = append(valid.Sections, kept)
	}
	return valid, invalid
}

// process resolves, builds, validates and synchronizes one destination
func (s *Syncer) process(dest entities.Destination, in *Inputs) entities.Outcome {
	start := time.Now()
	p := dest.Presentation

	index := s.index(p.Section, in)
	keys, rule := s.resolver.ResolveRule(p.Name, p.Section, in.Clinical, in.NonClinical)
	if len(keys) == 0 {
		logging.Warn("No index match", "presentation", p.Name, "section", p.Section)
	}

	doc := stubs.Build(dest, keys, index, in.Schema.Required, stubs.Options{
		IncludeFrequency: s.cfg.IncludeFrequency,
		FlagLowPriority:  s.cfg.LowPriorityMode == config.LowPriorityFlag,
	})

	outcome := entities.Outcome{
		Presentation: p,
		Rule:         rule,
		Keys:         keys,
		ItemCount:    len(doc.Items),
		Path:         dest.Path,
	}

	if err := s.validator.ValidateDocument(&doc, in.Schema.Required); err != nil {
		outcome.Err = fmt.Errorf("invalid document: %w", err)
		s.metrics.ObserveOutcome(outcome, time.Since(start))
		return outcome
	}

	action, err := s.sync.Synchronize(dest.Path, doc.Node())
	outcome.Action = action
	outcome.Err = err
	s.metrics.ObserveOutcome(outcome, time.Since(start))

	if err == nil {
		logging.Debug("Synchronized presentation",
			"presentation", p.Name,
			"action", action.String(),
			"rule", string(rule),
			"items", outcome.ItemCount,
			"path", dest.Path,
		)
	}
	return outcome
}

func (s *Syncer) index(section string, in *Inputs) *jsontree.Node {
	if s.resolver.IsClinical(section) {
		return in.Clinical
	}
	return in.NonClinical
}

// suggestions lists nearby index keys for every unmatched presentation
func (s *Syncer) suggestions(outcomes []entities.Outcome, in *Inputs) map[string][]string {
	out := make(map[string][]string)
	for _, o := range outcomes {
		if o.Matched() {
			continue
		}
		keys := s.index(o.Presentation.Section, in).Keys()
		if found := report.Suggest(o.Presentation.Name, keys, suggestionLimit); len(found) > 0 {
			out[o.Presentation.Name] = found
		}
	}
	return out
}

// Sync runs the whole sync command for cfg: profile and inputs, the
// synchronization pass, the report and the metrics textfile. A report or
// metrics write failure is logged and does not fail the run.
func Sync(cfg *config.Config, runID string) (*report.Report, error) {
	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}

	in, err := LoadInputs(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.NewRun("sync")
	syncer := NewSyncer(cfg, profile, in.Schema.Required, m, runID)

	rep, runErr := syncer.Run(in)
	if len(rep.Outcomes) > 0 || runErr == nil {
		if err := report.Write(rep, cfg.ReportPath, cfg.ReportHTMLPath); err != nil {
			logging.Error("Failed to write summary report", "path", cfg.ReportPath, "error", err)
		} else {
			logging.Info("Summary report written", "path", cfg.ReportPath)
		}
	}

	if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logging.Error("Failed to write metrics", "error", err)
	}

	return rep, runErr
}
