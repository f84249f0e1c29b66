// Package interfaces defines the abstractions the sync pipeline is built on,
// so the runner can be exercised with fakes.
package interfaces

import (
	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/jsontree"
)

// DataQualityReport provides a summary of content gaps found during a run
type DataQualityReport struct {
	NoIndexMatchCount   int
	NoIndexMatch        []string // first names only
	EmptyDocuments      int      // matched keys that list no etiologies
	SubstringMatchCount int
	SubstringMatches    []string // first names only
	FailedPresentations []string
	InvalidEntries      []string // list entries skipped before planning
}

// HasIssues reports whether anything in the report needs attention
func (r *DataQualityReport) HasIssues() bool {
	return r.NoIndexMatchCount > 0 || r.EmptyDocuments > 0 || len(r.FailedPresentations) > 0 ||
		len(r.InvalidEntries) > 0
}

// KeyResolver maps a presentation to keys of the etiology indexes.
type KeyResolver interface {
	// ResolveRule returns the matched keys, possibly none, and the rule used
	ResolveRule(name, section string, clinical, nonClinical *jsontree.Node) ([]string, entities.MatchRule)

	// IsClinical reports whether a section is looked up in the clinical index
	IsClinical(section string) bool
}

// Synchronizer brings one destination file in line with a fresh document.
type Synchronizer interface {
	Synchronize(destPath string, fresh *jsontree.Node) (entities.Action, error)
}

// DataValidator defines the contract for data validation operations.
// It ensures data integrity and consistency.
type DataValidator interface {
	// ValidatePresentation checks a presentation list entry
	ValidatePresentation(p entities.Presentation) error

	// CheckSlugCollisions fails when distinct names share a destination
	CheckSlugCollisions(dests []entities.Destination) error

	// ValidateDocument checks a built document before it is written
	ValidateDocument(doc *entities.Document, required []string) error

	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(outcomes []entities.Outcome) *DataQualityReport
}
