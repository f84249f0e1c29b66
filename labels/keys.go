package labels

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidRegex = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex   = regexp.MustCompile(`\s+`)
	slugHyphenRegex  = regexp.MustCompile(`-{2,}`)
	nonAlnumRegex    = regexp.MustCompile(`[^a-z0-9]`)
)

// foldAccents maps "Ménière" to "Meniere" so accented names keep their letters
// once everything outside [a-z0-9] is dropped
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Slugify derives the filename key of a presentation: lower-case letters,
// digits and single hyphens. Collisions between different names are not
// resolved here.
func Slugify(name string) string {
	slug := strings.ToLower(foldAccents(name))
	slug = slugInvalidRegex.ReplaceAllString(slug, "")
	slug = slugSpaceRegex.ReplaceAllString(strings.TrimSpace(slug), "-")
	slug = slugHyphenRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Compact lower-cases s and strips every non-alphanumeric character.
// "Abdominal pain (acute)" becomes "abdominalpainacute".
func Compact(s string) string {
	return nonAlnumRegex.ReplaceAllString(strings.ToLower(foldAccents(s)), "")
}

// FoldKey builds a case-insensitive identity key from parts
func FoldKey(parts ...string) string {
	caser := cases.Fold()
	folded := make([]string, len(parts))
	for i, p := range parts {
		folded[i] = caser.String(strings.TrimSpace(p))
	}
	return strings.Join(folded, "\x00")
}
