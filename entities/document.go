package entities

import (
	"github.com/giygas/clerkship-tools/jsontree"
)

// Top-level keys of a presentation document
const (
	KeyPresentation = "presentation"
	KeyItems        = "items"
	KeySources      = "sources"
	KeyLowPriority  = "lowPriority"
	KeySymptoms     = "symptoms"
)

// ManagedKeys are recomputed on every rebuild; any other top-level key of an
// existing document is carried over. lowPriority is rendered only when set,
// so a stale flag must not survive a rebuild.
var ManagedKeys = []string{KeyItems, KeySources, KeyLowPriority}

// Item is one etiology record of a presentation document
type Item struct {
	Name     string
	System   string
	RedFlag  bool
	Symptoms []string // required symptom keys, rendered as empty sequences
	Freq     string
}

// Document is the generated stub for one presentation
type Document struct {
	Presentation string
	Items        []Item
	Sources      []string
	LowPriority  bool // only rendered in flag mode
}

// Node renders the document as an ordered JSON object
func (d Document) Node() *jsontree.Node {
	root := jsontree.NewObject()
	root.Set(KeyPresentation, jsontree.NewString(d.Presentation))

	items := jsontree.NewArray()
	for _, it := range d.Items {
		items.Append(it.Node())
	}
	root.Set(KeyItems, items)
	root.Set(KeySources, jsontree.NewStringArray(d.Sources...))

	if d.LowPriority {
		root.Set(KeyLowPriority, jsontree.NewBool(true))
	}
	return root
}

// Node renders the item as an ordered JSON object
func (it Item) Node() *jsontree.Node {
	n := jsontree.NewObject()
	n.Set("name", jsontree.NewString(it.Name))
	n.Set("system", jsontree.NewString(it.System))
	n.Set("redFlag", jsontree.NewBool(it.RedFlag))

	symptoms := jsontree.NewObject()
	for _, key := range it.Symptoms {
		symptoms.Set(key, jsontree.NewArray())
	}
	n.Set(KeySymptoms, symptoms)

	if it.Freq != "" {
		n.Set("freq", jsontree.NewString(it.Freq))
	}
	return n
}
