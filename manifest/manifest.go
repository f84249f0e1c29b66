// Package manifest scans the note writer's template files and produces the
// tab manifest the front end loads: ordering, checksums and structure counts.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/giygas/clerkship-tools/logging"
	"github.com/giygas/clerkship-tools/stubsync"
)

// Version is bumped when the manifest layout changes
const Version = 1

const generatorName = "clerkship manifest"

var (
	// ErrNoTemplates is returned when the glob matches no file
	ErrNoTemplates = errors.New("no template files found")
	// ErrNoValidTemplates is returned when every matched template failed to load
	ErrNoValidTemplates = errors.New("no valid templates after parsing")
)

// Tab is one template entry of the manifest
type Tab struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	File         string `json:"file"`
	Source       string `json:"source"`
	Checksum     string `json:"checksum"`
	Title        any    `json:"title"`
	HTMLPath     string `json:"htmlPath"`
	SectionCount int    `json:"sectionCount"`
	PanelCount   int    `json:"panelCount"`
	ChipCount    int    `json:"chipCount"`
	HasDefaults  bool   `json:"hasDefaults"`
	Default      bool   `json:"default,omitempty"`
}

// ModeCounts sums the structure counts of every tab with the same key
type ModeCounts struct {
	Sections int `json:"sections"`
	Panels   int `json:"panels"`
	Chips    int `json:"chips"`
}

type Generator struct {
	Name        string `json:"name"`
	ProjectRoot string `json:"projectRoot"`
	FileCount   int    `json:"fileCount"`
}

type Index struct {
	Modes      []string               `json:"modes"`
	ByMode     map[string]*ModeCounts `json:"byMode"`
	AllChipIDs []string               `json:"allChipIds"`
}

type Settings struct {
	Columns int `json:"columns"`
}

// Manifest is the document written to tabs.json
type Manifest struct {
	Version     int       `json:"version"`
	GeneratedAt string    `json:"generatedAt"`
	Generator   Generator `json:"generator"`
	Tabs        []Tab     `json:"tabs"`
	Index       Index     `json:"index"`
	Settings    Settings  `json:"settings"`
}

// Options configures a manifest build
type Options struct {
	Dir       string
	Glob      string
	Columns   int
	HTMLPaths map[string]string // mode key -> html partial
	Priority  []string          // keys listed first, in this order
	Now       func() time.Time
}

// Build scans opts.Dir and assembles the manifest. Templates that cannot be
// read or parsed are logged and skipped.
func Build(opts Options) (*Manifest, error) {
	if !doublestar.ValidatePattern(opts.Glob) {
		return nil, fmt.Errorf("invalid template glob %q", opts.Glob)
	}

	files, err := doublestar.Glob(os.DirFS(opts.Dir), opts.Glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in %s: %w", opts.Dir, err)
	}
	if len(files) == 0 {
		return nil, ErrNoTemplates
	}
	slices.Sort(files)

	root := opts.Dir
	if abs, err := filepath.Abs(opts.Dir); err == nil {
		root = abs
	}

	var tabs []Tab
	var allChipIDs []string
	byMode := make(map[string]*ModeCounts)

	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		tab, chipIDs, err := loadTab(path, rel, opts.HTMLPaths)
		if err != nil {
			logging.Error("Template load failed, skipping", "file", rel, "error", err)
			continue
		}

		tabs = append(tabs, tab)
		allChipIDs = append(allChipIDs, chipIDs...)

		counts, ok := byMode[tab.Key]
		if !ok {
			counts = &ModeCounts{}
			byMode[tab.Key] = counts
		}
		counts.Sections += tab.SectionCount
		counts.Panels += tab.PanelCount
		counts.Chips += tab.ChipCount
	}

	if len(tabs) == 0 {
		return nil, ErrNoValidTemplates
	}

	SortTabs(tabs, opts.Priority)
	tabs[0].Default = true

	modes := make([]string, len(tabs))
	for i, t := range tabs {
		modes[i] = t.Key
	}

	slices.Sort(allChipIDs)
	allChipIDs = slices.Compact(allChipIDs)
	if allChipIDs == nil {
		allChipIDs = []string{}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	return &Manifest{
		Version:     Version,
		GeneratedAt: now().UTC().Format(time.RFC3339),
		Generator: Generator{
			Name:        generatorName,
			ProjectRoot: root,
			FileCount:   len(files),
		},
		Tabs: tabs,
		Index: Index{
			Modes:      modes,
			ByMode:     byMode,
			AllChipIDs: allChipIDs,
		},
		Settings: Settings{Columns: opts.Columns},
	}, nil
}

func loadTab(path, rel string, htmlPaths map[string]string) (Tab, []string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Tab{}, nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	logging.Info("Processing template", "file", rel, "size", humanize.Bytes(uint64(len(data))))

	var tmpl any
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return Tab{}, nil, decodeError(filepath.Base(path), data, err)
	}

	raw := field(tmpl, "modes")
	modes := NormalizeModes(raw)
	logging.Debug("Template modes", "file", rel, "raw", raw, "normalized", modes)
	if len(modes) == 0 {
		inferred := InferMode(path)
		logging.Warn("No valid modes found, using file name", "file", rel, "mode", inferred)
		modes = []string{inferred}
	}

	key := modes[0]
	counts := CountStructure(tmpl)

	return Tab{
		Key:          key,
		Label:        key,
		File:         rel,
		Source:       path,
		Checksum:     checksum(data),
		Title:        field(tmpl, "title"),
		HTMLPath:     HTMLPath(key, htmlPaths),
		SectionCount: counts.Sections,
		PanelCount:   counts.Panels,
		ChipCount:    counts.Chips,
		HasDefaults:  HasDefaults(tmpl),
	}, counts.ChipIDs, nil
}

// decodeError names the file and, for syntax errors, the line and column
func decodeError(name string, data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) && syntaxErr.Offset <= int64(len(data)) {
		prefix := data[:syntaxErr.Offset]
		line := bytes.Count(prefix, []byte{'\n'}) + 1
		col := len(prefix) - bytes.LastIndexByte(prefix, '\n')
		return fmt.Errorf("%s: JSON decode error at line %d, col %d: %w", name, line, col, err)
	}
	return fmt.Errorf("%s: JSON decode error: %w", name, err)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Write encodes the manifest with two-space indentation, without escaping
// HTML or non-ASCII characters, and replaces path atomically
func Write(path string, m *Manifest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := stubsync.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest %s does not exist: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, decodeError(filepath.Base(path), data, err)
	}
	return &m, nil
}

// HTMLPath returns the partial for a mode key: the configured entry, else
// writer_tabs/<Title-cased key>.html. An exact upper-case entry wins over
// case variants, which are tried in sorted key order.
func HTMLPath(key string, htmlPaths map[string]string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	if v, ok := htmlPaths[key]; ok {
		return v
	}
	for _, k := range slices.Sorted(maps.Keys(htmlPaths)) {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return htmlPaths[k]
		}
	}
	return "writer_tabs/" + titleCase(key) + ".html"
}

// titleCase upper-cases the first letter of every letter run and lower-cases
// the rest, so "FOO_BAR" becomes "Foo_Bar"
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
