// Package metrics provides Prometheus metrics for a single run. Batch runs
// do not serve /metrics; the registry is written once to a node_exporter
// textfile when the run ends.
//
// Exported metrics:
//   - clerkship_documents_total: Counter with the action label
//   - clerkship_index_matches_total: Counter with the resolver rule label
//   - clerkship_no_index_match_total: Counter
//   - clerkship_items_written_total: Counter
//   - clerkship_document_sync_duration_seconds: Histogram
//   - clerkship_manifest_tabs: Gauge
//   - clerkship_run_duration_seconds: Gauge
//   - clerkship_last_run_timestamp_seconds: Gauge
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/giygas/clerkship-tools/entities"
)

// Run holds the collectors of one command invocation
type Run struct {
	registry *prometheus.Registry
	started  time.Time

	Documents    *prometheus.CounterVec
	IndexMatches *prometheus.CounterVec
	NoIndexMatch prometheus.Counter
	ItemsWritten prometheus.Counter
	SyncDuration prometheus.Histogram
	ManifestTabs prometheus.Gauge
	RunDuration  prometheus.Gauge
	LastRun      prometheus.Gauge
}

// NewRun creates the collectors on a fresh registry. command is attached as
// a constant label so sync and manifest runs can share a textfile directory.
func NewRun(command string) *Run {
	labels := prometheus.Labels{"command": command}

	m := &Run{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),

		Documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "clerkship_documents_total",
				Help:        "Presentation documents by synchronizer action",
				ConstLabels: labels,
			},
			[]string{"action"},
		),

		IndexMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "clerkship_index_matches_total",
				Help:        "Presentations by the resolver rule that matched them",
				ConstLabels: labels,
			},
			[]string{"rule"},
		),

		NoIndexMatch: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "clerkship_no_index_match_total",
			Help:        "Presentations without any etiology index key",
			ConstLabels: labels,
		}),

		ItemsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "clerkship_items_written_total",
			Help:        "Etiology items in created or rebuilt documents",
			ConstLabels: labels,
		}),

		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "clerkship_document_sync_duration_seconds",
			Help:        "Time spent synchronizing one document",
			Buckets:     []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: labels,
		}),

		ManifestTabs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "clerkship_manifest_tabs",
			Help:        "Tabs in the last generated manifest",
			ConstLabels: labels,
		}),

		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "clerkship_run_duration_seconds",
			Help:        "Wall time of the last run",
			ConstLabels: labels,
		}),

		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "clerkship_last_run_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.Documents,
		m.IndexMatches,
		m.NoIndexMatch,
		m.ItemsWritten,
		m.SyncDuration,
		m.ManifestTabs,
		m.RunDuration,
		m.LastRun,
	)

	// Pre-create the label values so a run with no updates still reports zeros
	for _, a := range entities.Actions {
		m.Documents.WithLabelValues(string(a))
	}

	return m
}

// ObserveOutcome records one synchronized presentation
func (m *Run) ObserveOutcome(o entities.Outcome, elapsed time.Duration) {
	m.SyncDuration.Observe(elapsed.Seconds())

	if o.Matched() {
		m.IndexMatches.WithLabelValues(string(o.Rule)).Inc()
	} else {
		m.NoIndexMatch.Inc()
	}

	if o.Err != nil {
		return
	}
	m.Documents.WithLabelValues(string(o.Action)).Inc()
	if o.Action == entities.ActionCreated || o.Action == entities.ActionUpdated {
		m.ItemsWritten.Add(float64(o.ItemCount))
	}
}

// Gatherer exposes the registry, mainly for tests
func (m *Run) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Finish sets the duration gauges. It is safe to call more than once; the
// last call wins.
func (m *Run) Finish() {
	m.RunDuration.Set(time.Since(m.started).Seconds())
	m.LastRun.SetToCurrentTime()
}

// WriteTextfile finishes the run and writes the registry in the text
// exposition format. An empty path is a no-op.
func (m *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	m.Finish()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
