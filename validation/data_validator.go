// Package validation checks presentations, planned destinations and built
// documents before anything is written.
package validation

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/interfaces"
	"github.com/giygas/clerkship-tools/labels"
	"github.com/giygas/clerkship-tools/logging"
)

const (
	maxNameLength = 200
	// sampleLimit caps the names kept per category in the quality report
	sampleLimit = 10
)

// SlugCollisionError reports distinct presentations that would be written to
// the same file
type SlugCollisionError struct {
	Collisions map[string][]string // path -> display names, in list order
}

func (e *SlugCollisionError) Error() string {
	paths := make([]string, 0, len(e.Collisions))
	for p := range e.Collisions {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, fmt.Sprintf("%s <- %s", p, strings.Join(e.Collisions[p], ", ")))
	}
	return fmt.Sprintf("found %d slug collisions: %s", len(paths), strings.Join(parts, "; "))
}

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidatePresentation checks a presentation list entry
func (v *DataValidatorImpl) ValidatePresentation(p entities.Presentation) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("empty presentation name in section %q", p.Section)
	}

	if strings.TrimSpace(p.Section) == "" {
		return fmt.Errorf("presentation %q has no section", p.Name)
	}

	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return fmt.Errorf("presentation name too long in section %q: %d characters", p.Section, utf8.RuneCountInString(p.Name))
	}

	for _, r := range p.Name {
		if unicode.IsControl(r) {
			return fmt.Errorf("presentation %q contains control characters", p.Name)
		}
	}

	return nil
}

// CheckSlugCollisions fails when two different display names map to the same
// destination path
func (v *DataValidatorImpl) CheckSlugCollisions(dests []entities.Destination) error {
	byPath := make(map[string][]string)
	var order []string
	for _, d := range dests {
		if _, ok := byPath[d.Path]; !ok {
			order = append(order, d.Path)
		}
		if !slices.Contains(byPath[d.Path], d.Presentation.Name) {
			byPath[d.Path] = append(byPath[d.Path], d.Presentation.Name)
		}
	}

	collisions := make(map[string][]string)
	for _, path := range order {
		if names := byPath[path]; len(names) > 1 {
			collisions[path] = names
		}
	}

	if len(collisions) > 0 {
		logging.Error("Slug collisions detected",
			"count", len(collisions),
			"collisions", collisions,
		)
		return &SlugCollisionError{Collisions: collisions}
	}

	return nil
}

// ValidateDocument checks the invariants of a built document: a presentation
// name, non-empty item names, no duplicate case-insensitive (system, name)
// pair and every required symptom key on every item
func (v *DataValidatorImpl) ValidateDocument(doc *entities.Document, required []string) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	if strings.TrimSpace(doc.Presentation) == "" {
		return fmt.Errorf("document has no presentation name")
	}

	seen := make(map[string]bool, len(doc.Items))
	for i, it := range doc.Items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("item %d of %q has an empty name", i, doc.Presentation)
		}

		id := labels.FoldKey(it.System, it.Name)
		if seen[id] {
			return fmt.Errorf("duplicate item %q in system %q of %q", it.Name, it.System, doc.Presentation)
		}
		seen[id] = true

		for _, key := range required {
			if !slices.Contains(it.Symptoms, key) {
				return fmt.Errorf("item %q of %q is missing symptom key %q", it.Name, doc.Presentation, key)
			}
		}
	}

	return nil
}

// ReportDataQuality summarizes the outcomes of a run
func (v *DataValidatorImpl) ReportDataQuality(outcomes []entities.Outcome) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		NoIndexMatch:        []string{},
		SubstringMatches:    []string{},
		FailedPresentations: []string{},
	}

	for _, o := range outcomes {
		name := o.Presentation.Name

		// Check 1: presentations without any index key
		if !o.Matched() {
			report.NoIndexMatchCount++
			if len(report.NoIndexMatch) < sampleLimit {
				report.NoIndexMatch = append(report.NoIndexMatch, name)
			}
		}

		// Check 2: matched keys but nothing to list
		if o.Matched() && o.ItemCount == 0 {
			report.EmptyDocuments++
		}

		// Check 3: umbrella matches deserve a manual alias
		if o.Rule == entities.MatchSubstring {
			report.SubstringMatchCount++
			if len(report.SubstringMatches) < sampleLimit {
				report.SubstringMatches = append(report.SubstringMatches, name)
			}
		}

		// Check 4: failed writes (store ALL names)
		if o.Err != nil {
			report.FailedPresentations = append(report.FailedPresentations, name)
		}
	}

	return report
}
