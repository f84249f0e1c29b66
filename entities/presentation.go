// Package entities holds the data types shared by the stub generator: the
// presentation list, etiology triples, generated documents and run outcomes.
package entities

// Presentation is one entry of the presentation list
type Presentation struct {
	Name        string `json:"name"`
	Section     string `json:"section"`
	LowPriority bool   `json:"lowPriority,omitempty"`
}

// Section is a named, ordered group of presentations
type Section struct {
	Name          string
	Presentations []Presentation
}

// PresentationList keeps the sections in file order
type PresentationList struct {
	Sections []Section
}

// All returns every presentation in list order
func (l PresentationList) All() []Presentation {
	var all []Presentation
	for _, s := range l.Sections {
		all = append(all, s.Presentations...)
	}
	return all
}

// Count returns the number of presentations across sections
func (l PresentationList) Count() int {
	n := 0
	for _, s := range l.Sections {
		n += len(s.Presentations)
	}
	return n
}

// SymptomSchema lists the symptom axes every stub item must expose, in order
type SymptomSchema struct {
	Required []string
	// Source is the schema file the keys came from, empty for the default list
	Source string
}

// DefaultSymptomKeys is used when no schema declares the required keys
var DefaultSymptomKeys = []string{
	"onset",
	"location",
	"duration",
	"character",
	"aggravating",
	"relieving",
	"radiation",
	"timing",
	"severity",
	"associated",
	"context",
}
