package manifest

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Counts summarizes the layout of one template
type Counts struct {
	Sections int
	Panels   int
	Chips    int
	ChipIDs  []string
}

// field returns obj[key] when obj is an object
func field(obj any, key string) any {
	if m, ok := obj.(map[string]any); ok {
		return m[key]
	}
	return nil
}

// objects calls fn for every object in v, parents before children
func objects(v any, fn func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		fn(t)
		for _, child := range t {
			objects(child, fn)
		}
	case []any:
		for _, child := range t {
			objects(child, fn)
		}
	}
}

// CountStructure counts the top-level sections, every panels list and every
// chips list found anywhere in the template, collecting chip ids
func CountStructure(tmpl any) Counts {
	var c Counts
	if sections, ok := field(tmpl, "sections").([]any); ok {
		c.Sections = len(sections)
	}

	objects(tmpl, func(obj map[string]any) {
		if panels, ok := obj["panels"].([]any); ok {
			c.Panels += len(panels)
		}
		if chips, ok := obj["chips"].([]any); ok {
			c.Chips += len(chips)
			for _, chip := range chips {
				if id, ok := field(chip, "id").(string); ok {
					c.ChipIDs = append(c.ChipIDs, id)
				}
			}
		}
	})
	return c
}

// HasDefaults reports whether any object of the template has a defaults key
func HasDefaults(tmpl any) bool {
	found := false
	objects(tmpl, func(obj map[string]any) {
		if _, ok := obj["defaults"]; ok {
			found = true
		}
	})
	return found
}

// NormalizeModes coerces a modes value into non-empty upper-case keys. A
// string is a single mode; scalars inside a list are converted to text.
func NormalizeModes(raw any) []string {
	var values []any
	switch t := raw.(type) {
	case []any:
		values = t
	case string:
		values = []any{t}
	default:
		return nil
	}

	var modes []string
	for _, v := range values {
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(t)
		default:
			continue
		}
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			modes = append(modes, s)
		}
	}
	return modes
}

// InferMode derives a mode key from a template file name:
// template_MSE.json -> MSE, template_subjective.json -> SUBJECTIVE
func InferMode(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.HasPrefix(strings.ToLower(name), "template_") {
		name = name[len("template_"):]
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

// SortTabs orders tabs by their position in priority, unlisted keys last,
// then alphabetically by key
func SortTabs(tabs []Tab, priority []string) {
	rank := func(key string) int {
		if i := slices.Index(priority, key); i >= 0 {
			return i
		}
		return len(priority)
	}

	slices.SortStableFunc(tabs, func(a, b Tab) int {
		if ra, rb := rank(a.Key), rank(b.Key); ra != rb {
			return ra - rb
		}
		return strings.Compare(a.Key, b.Key)
	})
}
