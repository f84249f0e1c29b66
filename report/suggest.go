package report

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/giygas/clerkship-tools/labels"
)

// minWordLength keeps short words like "of" from matching every key
const minWordLength = 4

// Suggest returns up to limit index keys that fuzzily resemble name, best
// first. The whole compact name is tried, then each longer word.
func Suggest(name string, keys []string, limit int) []string {
	if limit <= 0 || len(keys) == 0 {
		return nil
	}

	compactKeys := make([]string, len(keys))
	for i, k := range keys {
		compactKeys[i] = labels.Compact(k)
	}

	patterns := []string{labels.Compact(name)}
	for _, w := range strings.Fields(labels.Normalize(name)) {
		if w = labels.Compact(w); len(w) >= minWordLength && !slices.Contains(patterns, w) {
			patterns = append(patterns, w)
		}
	}

	var out []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		for _, m := range fuzzy.Find(p, compactKeys) {
			if k := keys[m.Index]; !slices.Contains(out, k) {
				out = append(out, k)
			}
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
