// Package report renders the summary of a sync run as a markdown table, and
// optionally as HTML.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/interfaces"
	"github.com/giygas/clerkship-tools/stubsync"
)

// Report is everything the summary shows about one run
type Report struct {
	RunID         string
	GeneratedAt   time.Time
	Mode          string
	OutputBaseDir string
	Outcomes      []entities.Outcome
	Quality       *interfaces.DataQualityReport
	// Suggestions maps unmatched presentation names to nearby index keys
	Suggestions map[string][]string
}

var outcomeHeader = []string{"Presentation", "Section", "Action", "Rule", "Matched keys", "Items", "Path"}

// Totals counts outcomes per action, plus the no-match and error tallies
type Totals struct {
	ByAction     map[entities.Action]int
	NoIndexMatch int
	Errors       int
}

// Totals computes the per-action counts
func (r *Report) Totals() Totals {
	t := Totals{ByAction: make(map[entities.Action]int, len(entities.Actions))}
	for _, o := range r.Outcomes {
		if !o.Matched() {
			t.NoIndexMatch++
		}
		if o.Err != nil {
			t.Errors++
			continue
		}
		t.ByAction[o.Action]++
	}
	return t
}

// Markdown renders the report
func (r *Report) Markdown() []byte {
	var b bytes.Buffer

	b.WriteString("# Stub synchronization report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	if r.Mode != "" {
		fmt.Fprintf(&b, "- Mode: %s\n", r.Mode)
	}
	if r.OutputBaseDir != "" {
		fmt.Fprintf(&b, "- Output: `%s`\n", r.OutputBaseDir)
	}
	fmt.Fprintf(&b, "- Presentations: %d\n\n", len(r.Outcomes))

	rows := make([][]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		action := string(o.Action)
		if o.Err != nil {
			action = "error: " + o.Err.Error()
		}
		keys := "-"
		if o.Matched() {
			keys = strings.Join(o.Keys, ", ")
		}
		rows = append(rows, []string{
			o.Presentation.Name,
			o.Presentation.Section,
			action,
			string(o.Rule),
			keys,
			strconv.Itoa(o.ItemCount),
			"`" + o.Path + "`",
		})
	}
	writeTable(&b, outcomeHeader, rows)

	totals := r.Totals()
	b.WriteString("\n## Totals\n\n")
	totalRows := make([][]string, 0, len(entities.Actions)+2)
	for _, a := range entities.Actions {
		totalRows = append(totalRows, []string{string(a), strconv.Itoa(totals.ByAction[a])})
	}
	totalRows = append(totalRows,
		[]string{"no index match", strconv.Itoa(totals.NoIndexMatch)},
		[]string{"errors", strconv.Itoa(totals.Errors)},
	)
	writeTable(&b, []string{"Outcome", "Count"}, totalRows)

	if r.Quality != nil && r.Quality.HasIssues() {
		r.writeQuality(&b)
	}

	return b.Bytes()
}

func (r *Report) writeQuality(b *bytes.Buffer) {
	q := r.Quality
	b.WriteString("\n## Data quality\n\n")

	if q.NoIndexMatchCount > 0 {
		fmt.Fprintf(b, "- %d presentations have no index match", q.NoIndexMatchCount)
		if q.NoIndexMatchCount > len(q.NoIndexMatch) {
			fmt.Fprintf(b, " (first %d listed)", len(q.NoIndexMatch))
		}
		b.WriteString(":\n")
		for _, name := range q.NoIndexMatch {
			fmt.Fprintf(b, "  - %s", escapeCell(name))
			if s := r.Suggestions[name]; len(s) > 0 {
				fmt.Fprintf(b, " (closest keys: %s)", escapeCell(strings.Join(s, ", ")))
			}
			b.WriteString("\n")
		}
	}
	if q.EmptyDocuments > 0 {
		fmt.Fprintf(b, "- %d matched presentations list no etiologies\n", q.EmptyDocuments)
	}
	if q.SubstringMatchCount > 0 {
		fmt.Fprintf(b, "- %d presentations matched by substring, consider an alias: %s\n",
			q.SubstringMatchCount, escapeCell(strings.Join(q.SubstringMatches, ", ")))
	}
	if len(q.FailedPresentations) > 0 {
		fmt.Fprintf(b, "- %d presentations failed: %s\n",
			len(q.FailedPresentations), escapeCell(strings.Join(q.FailedPresentations, ", ")))
	}
	if len(q.InvalidEntries) > 0 {
		fmt.Fprintf(b, "- %d list entries skipped as invalid:\n", len(q.InvalidEntries))
		for _, reason := range q.InvalidEntries {
			fmt.Fprintf(b, "  - %s\n", escapeCell(reason))
		}
	}
}

// HTML renders the markdown report with GitHub-style tables
func (r *Report) HTML() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert(r.Markdown(), &body); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Stub synchronization report</title>\n</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}

// Write writes the markdown report, and the HTML rendering when htmlPath is
// set. Both files are replaced atomically.
func Write(r *Report, path, htmlPath string) error {
	if err := stubsync.WriteFileAtomic(path, r.Markdown(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if htmlPath == "" {
		return nil
	}
	html, err := r.HTML()
	if err != nil {
		return err
	}
	if err := stubsync.WriteFileAtomic(htmlPath, html, 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}

// writeTable writes a markdown table with columns padded to their display
// width, so the file also reads well as plain text
func writeTable(b *bytes.Buffer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(3, runewidth.StringWidth(h))
	}

	escaped := make([][]string, len(rows))
	for r, row := range rows {
		escaped[r] = make([]string, len(header))
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = escapeCell(row[i])
			}
			escaped[r][i] = cell
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	writeRow(b, header, widths)
	sep := make([]string, len(header))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(b, sep, widths)
	for _, row := range escaped {
		writeRow(b, row, widths)
	}
}

func writeRow(b *bytes.Buffer, cells []string, widths []int) {
	b.WriteString("|")
	for i, c := range cells {
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(c, widths[i]))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
