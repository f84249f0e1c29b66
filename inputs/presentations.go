package inputs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/logging"
)

// SkipStats counts the entries of the presentation list that were ignored
type SkipStats struct {
	InvalidSections int // section value is not an array
	EmptyNames      int
	InvalidEntries  int // neither a string nor an object with a string name
}

// Total returns the number of skipped sections and entries
func (s SkipStats) Total() int {
	return s.InvalidSections + s.EmptyNames + s.InvalidEntries
}

// LoadPresentationList reads the section -> presentations mapping. Entries
// are bare strings or objects with a name; an object may mark itself low
// priority with "lowPriority": true or "priority": "low".
func LoadPresentationList(res Resource, dataDirs []string) (entities.PresentationList, error) {
	node, path, err := LoadJSON(res, dataDirs)
	if err != nil {
		return entities.PresentationList{}, err
	}

	list, stats, err := ParsePresentationList(node)
	if err != nil {
		return entities.PresentationList{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	// Log skip statistics if any entries were skipped
	if stats.Total() > 0 {
		logging.Info("Presentation list skip statistics",
			"invalid_sections", stats.InvalidSections,
			"empty_names", stats.EmptyNames,
			"invalid_entries", stats.InvalidEntries,
		)
	}

	logging.Info("Loaded presentation list",
		"path", path,
		"sections", len(list.Sections),
		"presentations", list.Count(),
	)
	return list, nil
}

// ParsePresentationList converts a decoded presentation list
func ParsePresentationList(node *jsontree.Node) (entities.PresentationList, SkipStats, error) {
	var stats SkipStats
	if !node.IsObject() {
		return entities.PresentationList{}, stats, fmt.Errorf("presentation list must be a JSON object of sections, got %s", node.Kind())
	}

	var list entities.PresentationList
	for _, m := range node.Members() {
		if !m.Value.IsArray() {
			stats.InvalidSections++
			logging.Warn("Presentation list section is not an array", "section", m.Key, "kind", m.Value.Kind().String())
			continue
		}

		section := entities.Section{Name: m.Key}
		for _, entry := range m.Value.Items() {
			p, ok := parseEntry(entry)
			switch {
			case !ok:
				stats.InvalidEntries++
				continue
			case p.Name == "":
				stats.EmptyNames++
				continue
			}
			p.Section = m.Key
			section.Presentations = append(section.Presentations, p)
		}
		list.Sections = append(list.Sections, section)
	}

	return list, stats, nil
}

func parseEntry(entry *jsontree.Node) (entities.Presentation, bool) {
	if s, ok := entry.Str(); ok {
		return entities.Presentation{Name: strings.TrimSpace(s)}, true
	}
	if !entry.IsObject() {
		return entities.Presentation{}, false
	}

	name, ok := entry.Get("name").Str()
	if !ok {
		return entities.Presentation{}, false
	}

	p := entities.Presentation{Name: strings.TrimSpace(name)}
	if low, ok := entry.Get("lowPriority").BoolValue(); ok && low {
		p.LowPriority = true
	}
	if prio, ok := entry.Get("priority").Str(); ok && strings.EqualFold(strings.TrimSpace(prio), "low") {
		p.LowPriority = true
	}
	return p, true
}
