// Package etiology flattens the loosely structured etiology index into
// (category, name, frequency) triples.
//
// An index value is one of four shapes:
//   - CategoryMap: an object whose keys are category labels
//   - LeafMap: an object whose keys are etiology names and whose values are
//     leaf metadata (empty, or carrying a frequency tag)
//   - LeafList: an array of names, named objects or nested values
//   - LeafString: a single etiology name
//
// Anything else (numbers, booleans, null) is ignored.
package etiology

import (
	"strings"

	"github.com/giygas/clerkship-tools/jsontree"
)

// Shape is the classification of an index value
type Shape int

const (
	ShapeIgnored Shape = iota
	ShapeCategoryMap
	ShapeLeafMap
	ShapeLeafList
	ShapeLeafString
)

func (s Shape) String() string {
	switch s {
	case ShapeCategoryMap:
		return "category-map"
	case ShapeLeafMap:
		return "leaf-map"
	case ShapeLeafList:
		return "leaf-list"
	case ShapeLeafString:
		return "leaf-string"
	}
	return "ignored"
}

// Field names recognized inside leaf metadata
var (
	frequencyFields = []string{"freq", "frequency"}
	redFlagFields   = []string{"redFlag", "red_flag"}
)

// IsLeafMetadata reports whether node looks like the metadata of a single
// etiology: an object that is empty or carries a frequency or red flag field.
func IsLeafMetadata(node *jsontree.Node) bool {
	if !node.IsObject() {
		return false
	}
	if node.Len() == 0 {
		return true
	}
	for _, f := range frequencyFields {
		if node.Has(f) {
			return true
		}
	}
	for _, f := range redFlagFields {
		if node.Has(f) {
			return true
		}
	}
	return false
}

// Classify returns the shape of node. An object is a LeafMap only when every
// one of its values is leaf metadata; the empty object is therefore a LeafMap
// with no leaves.
func Classify(node *jsontree.Node) Shape {
	switch node.Kind() {
	case jsontree.String:
		return ShapeLeafString
	case jsontree.Array:
		return ShapeLeafList
	case jsontree.Object:
		for _, m := range node.Members() {
			if !IsLeafMetadata(m.Value) {
				return ShapeCategoryMap
			}
		}
		return ShapeLeafMap
	}
	return ShapeIgnored
}

// frequencyOf extracts the frequency tag of leaf metadata, empty when absent
func frequencyOf(meta *jsontree.Node) string {
	for _, f := range frequencyFields {
		v := meta.Get(f)
		if s, ok := v.Str(); ok {
			return strings.TrimSpace(s)
		}
		if num, ok := v.NumberValue(); ok {
			return num.String()
		}
	}
	return ""
}

func redFlagOf(meta *jsontree.Node) bool {
	for _, f := range redFlagFields {
		if b, ok := meta.Get(f).BoolValue(); ok && b {
			return true
		}
	}
	return false
}
