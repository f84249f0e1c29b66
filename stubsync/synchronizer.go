// Package stubsync decides, per destination file, whether a freshly built
// presentation document is written, merged, backfilled or left alone.
package stubsync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/logging"
)

// Mode selects how existing files are treated
type Mode int

const (
	// ModeSkipExisting leaves existing files untouched
	ModeSkipExisting Mode = iota
	// ModeRebuild recomputes existing files, keeping unmanaged top-level keys
	ModeRebuild
	// ModeBackfill only fills missing required symptom keys
	ModeBackfill
)

func (m Mode) String() string {
	switch m {
	case ModeRebuild:
		return "rebuild"
	case ModeBackfill:
		return "backfill"
	}
	return "skip-existing"
}

// DefaultPlaceholder fills backfilled symptom keys
const DefaultPlaceholder = "n/a"

// Synchronizer implements interfaces.Synchronizer
type Synchronizer struct {
	mode        Mode
	required    []string
	placeholder string
}

// New creates a synchronizer. required is the ordered list of symptom keys
// every item must expose; an empty placeholder selects DefaultPlaceholder.
func New(mode Mode, required []string, placeholder string) *Synchronizer {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Synchronizer{
		mode:        mode,
		required:    append([]string{}, required...),
		placeholder: placeholder,
	}
}

// Mode returns the configured mode
func (s *Synchronizer) Mode() Mode {
	return s.mode
}

// Synchronize brings destPath in line with fresh according to the mode
func (s *Synchronizer) Synchronize(destPath string, fresh *jsontree.Node) (entities.Action, error) {
	_, err := os.Stat(destPath)
	if errors.Is(err, fs.ErrNotExist) {
		if err := WriteDocument(destPath, fresh); err != nil {
			return "", err
		}
		return entities.ActionCreated, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", destPath, err)
	}

	switch s.mode {
	case ModeRebuild:
		return s.rebuild(destPath, fresh)
	case ModeBackfill:
		return s.backfill(destPath, fresh)
	}
	return entities.ActionSkipped, nil
}

func (s *Synchronizer) rebuild(destPath string, fresh *jsontree.Node) (entities.Action, error) {
	existing, err := s.loadExisting(destPath)
	if err != nil {
		return "", err
	}
	if existing == nil {
		existing = jsontree.NewObject()
	}

	merged := MergeExtras(fresh, existing)
	if err := WriteDocument(destPath, merged); err != nil {
		return "", err
	}
	return entities.ActionUpdated, nil
}

func (s *Synchronizer) backfill(destPath string, fresh *jsontree.Node) (entities.Action, error) {
	existing, err := s.loadExisting(destPath)
	if err != nil {
		return "", err
	}

	// A malformed file is replaced by the fresh document, backfilled
	if existing == nil {
		doc := fresh.Clone()
		Backfill(doc, s.required, s.placeholder)
		if err := WriteDocument(destPath, doc); err != nil {
			return "", err
		}
		return entities.ActionBackfilled, nil
	}

	if added := Backfill(existing, s.required, s.placeholder); added == 0 {
		return entities.ActionSkipped, nil
	}
	if err := WriteDocument(destPath, existing); err != nil {
		return "", err
	}
	return entities.ActionBackfilled, nil
}

// loadExisting returns nil, nil when the file holds malformed JSON or
// anything other than an object
func (s *Synchronizer) loadExisting(destPath string) (*jsontree.Node, error) {
	doc, err := ReadDocument(destPath)
	if err != nil {
		var parseErr *jsontree.ParseError
		if errors.As(err, &parseErr) {
			logging.Warn("Existing document is malformed, overwriting", "path", destPath, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", destPath, err)
	}
	if !doc.IsObject() {
		logging.Warn("Existing document is not a JSON object, overwriting", "path", destPath, "kind", doc.Kind().String())
		return nil, nil
	}
	return doc, nil
}

// MergeExtras returns a copy of fresh extended with every top-level key of
// existing that fresh lacks and that the tool does not manage
func MergeExtras(fresh, existing *jsontree.Node) *jsontree.Node {
	merged := fresh.Clone()
	for _, m := range existing.Members() {
		if merged.Has(m.Key) || slices.Contains(entities.ManagedKeys, m.Key) {
			continue
		}
		merged.Set(m.Key, m.Value.Clone())
	}
	return merged
}

// Backfill gives every item of doc a one-element placeholder sequence for each
// required symptom key that is missing, null or an empty sequence. It returns
// the number of keys added.
func Backfill(doc *jsontree.Node, required []string, placeholder string) int {
	added := 0
	for _, item := range doc.Get(entities.KeyItems).Items() {
		if !item.IsObject() {
			continue
		}

		symptoms := item.Get(entities.KeySymptoms)
		if symptoms.IsNull() {
			symptoms = jsontree.NewObject()
			item.Set(entities.KeySymptoms, symptoms)
		}
		if !symptoms.IsObject() {
			continue
		}

		for _, key := range required {
			v := symptoms.Get(key)
			if v.IsNull() || (v.IsArray() && v.Len() == 0) {
				symptoms.Set(key, jsontree.NewStringArray(placeholder))
				added++
			}
		}
	}
	return added
}
