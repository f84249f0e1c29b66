// Package labels cleans the free-text labels found in etiology indexes and
// derives the stable keys (slugs, compact forms, fold keys) used to match and
// store presentations.
package labels

import (
	"regexp"
	"strings"
)

// Pre-compiled patterns, applied in this order by normalizeOnce
var (
	// Leading bullets and dashes copied from pocketbook lists
	bulletRegex = regexp.MustCompile(`^[\s\-–—•·*▪◦●○‣⁃>]+`)

	// "(see p. 12)", "(Fig. 3.1)", "[figure 2]"
	figureRegex = regexp.MustCompile(`(?i)\s*[(\[]\s*(?:see|figs?|figures?)\b[^)\]]*[)\]]`)

	// "(e.g. TB, HIV)" removed with its parentheses
	parenExampleRegex = regexp.MustCompile(`(?i)\s*\(\s*e\.\s?g\b\.?[^)]*\)`)

	// ", e.g. opioids" up to the next delimiter
	exampleTailRegex = regexp.MustCompile(`(?i)[\s,;]*\be\.\s?g\b\.?[^;:)\]]*`)

	trailingRegex   = regexp.MustCompile(`[\s.,;:!?\-–—/•·*]+$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Normalize cleans a free-text label. It never fails and is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	current := text
	// Every pass only removes or collapses characters, so this terminates
	for {
		next := normalizeOnce(current)
		if next == current {
			return next
		}
		current = next
	}
}

func normalizeOnce(text string) string {
	s := bulletRegex.ReplaceAllString(text, "")
	s = figureRegex.ReplaceAllString(s, "")
	s = parenExampleRegex.ReplaceAllString(s, "")
	s = exampleTailRegex.ReplaceAllString(s, "")
	s = trailingRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
