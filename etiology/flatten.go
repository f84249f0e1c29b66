package etiology

import (
	"iter"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/labels"
)

// Flatten walks node and yields every etiology it lists, in first-seen order,
// under the category inherited from the caller. The sequence is lazy and can
// be ranged over any number of times. Names are normalized and empty names are
// never yielded.
func Flatten(node *jsontree.Node, category string) iter.Seq[entities.Triple] {
	return func(yield func(entities.Triple) bool) {
		walk(node, category, yield)
	}
}

// Collect drains Flatten into a slice
func Collect(node *jsontree.Node, category string) []entities.Triple {
	var out []entities.Triple
	for t := range Flatten(node, category) {
		out = append(out, t)
	}
	return out
}

// walk returns false once the consumer stops the iteration
func walk(node *jsontree.Node, category string, yield func(entities.Triple) bool) bool {
	switch Classify(node) {
	case ShapeLeafString:
		s, _ := node.Str()
		return emit(category, s, nil, yield)

	case ShapeLeafMap:
		for _, m := range node.Members() {
			if !emit(category, m.Key, m.Value, yield) {
				return false
			}
		}

	case ShapeCategoryMap:
		for _, m := range node.Members() {
			// Every key is a label, even when its value looks like metadata
			child := labels.Normalize(m.Key)
			if child == "" {
				child = category
			}
			if !walk(m.Value, child, yield) {
				return false
			}
		}

	case ShapeLeafList:
		for _, elem := range node.Items() {
			if elem.IsObject() {
				if name, ok := elem.Get("name").Str(); ok {
					if !emit(category, name, elem, yield) {
						return false
					}
					continue
				}
			}
			if !walk(elem, category, yield) {
				return false
			}
		}
	}

	return true
}

// emit yields one leaf; meta may be nil
func emit(category, rawName string, meta *jsontree.Node, yield func(entities.Triple) bool) bool {
	name := labels.Normalize(rawName)
	if name == "" {
		return true
	}

	t := entities.Triple{Category: category, Name: name}
	if meta != nil {
		t.Frequency = frequencyOf(meta)
		t.RedFlag = redFlagOf(meta)
	}
	return yield(t)
}
