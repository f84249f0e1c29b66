// Package stubs assembles presentation documents from the etiology index and
// works out where each one is written.
package stubs

import (
	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/etiology"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/labels"
)

// Options controls the optional parts of a document
type Options struct {
	IncludeFrequency bool
	// FlagLowPriority renders lowPriority on low-priority documents
	FlagLowPriority bool
}

// Build flattens the index subtree of every matched key into one document.
// Later items with the same case-insensitive (system, name) as an earlier one
// are dropped. Keys missing from the index contribute nothing but are still
// listed as sources.
func Build(dest entities.Destination, keys []string, index *jsontree.Node, required []string, opts Options) entities.Document {
	doc := entities.Document{
		Presentation: dest.Presentation.Name,
		Items:        []entities.Item{},
		Sources:      append([]string{}, keys...),
		LowPriority:  opts.FlagLowPriority && dest.LowPriority,
	}

	seen := make(map[string]bool)
	for _, key := range keys {
		for t := range etiology.Flatten(index.Get(key), "") {
			id := labels.FoldKey(t.Category, t.Name)
			if seen[id] {
				continue
			}
			seen[id] = true

			item := entities.Item{
				Name:     t.Name,
				System:   t.Category,
				RedFlag:  t.RedFlag,
				Symptoms: required,
			}
			if opts.IncludeFrequency {
				item.Freq = t.Frequency
			}
			doc.Items = append(doc.Items, item)
		}
	}

	return doc
}
