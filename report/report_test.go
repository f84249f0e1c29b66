package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/interfaces"
)

func sampleReport() *Report {
	return &Report{
		RunID:         "0b5c6a4e-1111-4222-8333-444455556666",
		GeneratedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Mode:          "rebuild",
		OutputBaseDir: "data/presentations",
		Outcomes: []entities.Outcome{
			{
				Presentation: entities.Presentation{Name: "Headache", Section: "Clinical Presentations"},
				Action:       entities.ActionCreated,
				Rule:         entities.MatchExact,
				Keys:         []string{"Headache"},
				ItemCount:    2,
				Path:         "data/presentations/clinical/headache.json",
			},
			{
				Presentation: entities.Presentation{Name: "Abdominal Pain", Section: "Clinical Presentations"},
				Action:       entities.ActionUpdated,
				Rule:         entities.MatchSubstring,
				Keys:         []string{"Abdominal pain (acute)", "Abdominal pain (chronic)"},
				ItemCount:    7,
				Path:         "data/presentations/clinical/abdominal-pain.json",
			},
			{
				Presentation: entities.Presentation{Name: "Hiccups | rare", Section: "Clinical Presentations"},
				Action:       entities.ActionSkipped,
				Rule:         entities.MatchNone,
				Path:         "data/presentations/clinical/other/hiccups-rare.json",
			},
			{
				Presentation: entities.Presentation{Name: "Cough", Section: "Clinical Presentations"},
				Rule:         entities.MatchExact,
				Keys:         []string{"Cough"},
				Path:         "data/presentations/clinical/cough.json",
				Err:          errors.New("permission denied"),
			},
		},
	}
}

func TestTotals(t *testing.T) {
	totals := sampleReport().Totals()

	assert.Equal(t, 1, totals.ByAction[entities.ActionCreated])
	assert.Equal(t, 1, totals.ByAction[entities.ActionUpdated])
	assert.Equal(t, 1, totals.ByAction[entities.ActionSkipped])
	assert.Equal(t, 0, totals.ByAction[entities.ActionBackfilled])
	assert.Equal(t, 1, totals.NoIndexMatch)
	assert.Equal(t, 1, totals.Errors)
}

func TestMarkdown(t *testing.T) {
	md := string(sampleReport().Markdown())

	assert.Contains(t, md, "- Run: `0b5c6a4e-1111-4222-8333-444455556666`")
	assert.Contains(t, md, "- Generated: 2026-03-01T12:00:00Z")
	assert.Contains(t, md, "- Mode: rebuild")
	assert.Contains(t, md, "- Presentations: 4")
	assert.Contains(t, md, "Abdominal pain (acute), Abdominal pain (chronic)")
	assert.Contains(t, md, `Hiccups \| rare`)
	assert.Contains(t, md, "error: permission denied")
	assert.Contains(t, md, "## Totals")
	assert.NotContains(t, md, "## Data quality")

	// Every table line has the same display width
	var widths []int
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "| Presentation") || strings.HasPrefix(line, "| Headache") || strings.HasPrefix(line, "| Abdominal") {
			widths = append(widths, len([]rune(line)))
		}
	}
	require.Len(t, widths, 3)
	assert.Equal(t, widths[0], widths[1])
	assert.Equal(t, widths[0], widths[2])
}

func TestMarkdownDataQuality(t *testing.T) {
	r := sampleReport()
	r.Quality = &interfaces.DataQualityReport{
		NoIndexMatchCount:   12,
		NoIndexMatch:        []string{"Hiccups | rare"},
		SubstringMatchCount: 1,
		SubstringMatches:    []string{"Abdominal Pain"},
		FailedPresentations: []string{"Cough"},
		InvalidEntries:      []string{"presentation name too long in section \"Clinical\": 201 characters"},
	}
	r.Suggestions = map[string][]string{"Hiccups | rare": {"Hiccup"}}

	md := string(r.Markdown())
	assert.Contains(t, md, "## Data quality")
	assert.Contains(t, md, "- 12 presentations have no index match (first 1 listed):")
	assert.Contains(t, md, `  - Hiccups \| rare (closest keys: Hiccup)`)
	assert.Contains(t, md, "consider an alias: Abdominal Pain")
	assert.Contains(t, md, "- 1 presentations failed: Cough")
	assert.Contains(t, md, "- 1 list entries skipped as invalid:\n  - presentation name too long")
}

func TestHTML(t *testing.T) {
	html, err := sampleReport().HTML()
	require.NoError(t, err)

	s := string(html)
	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"))
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<th>Presentation</th>")
	assert.Contains(t, s, "<h1>Stub synchronization report</h1>")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "reports", "stub_report.md")
	htmlPath := filepath.Join(dir, "reports", "stub_report.html")

	require.NoError(t, Write(sampleReport(), mdPath, htmlPath))

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, sampleReport().Markdown(), md)

	_, err = os.Stat(htmlPath)
	assert.NoError(t, err)
}

func TestWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := Write(sampleReport(), filepath.Join(blocker, "report.md"), "")
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	keys := []string{"Abdominal pain (acute)", "Abdominal pain (chronic)", "Chest pain", "Headache"}

	testCases := []struct {
		name     string
		query    string
		limit    int
		expected []string
	}{
		{"abbreviated", "Abdo pain", 2, []string{"Abdominal pain (acute)", "Abdominal pain (chronic)"}},
		{"word fallback", "Thunderclap headache", 3, []string{"Headache"}},
		{"nothing close", "Zzzz", 3, nil},
		{"zero limit", "Abdo pain", 0, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Suggest(tc.query, keys, tc.limit))
		})
	}
}
