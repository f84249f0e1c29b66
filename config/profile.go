package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giygas/clerkship-tools/resolver"
)

// Profile holds the lookup tables that are fixed when the content is authored:
// folder names, which sections are clinical, low-priority presentations,
// manual index aliases and the manifest's HTML partials.
type Profile struct {
	SectionFolders   map[string]string `yaml:"section_folders"`
	DefaultFolder    string            `yaml:"default_folder"`
	ClinicalSections []string          `yaml:"clinical_sections"`
	LowPriority      []string          `yaml:"low_priority"`
	LowPriorityDir   string            `yaml:"low_priority_dir"`
	Aliases          []resolver.Alias  `yaml:"aliases"`
	HTMLPaths        map[string]string `yaml:"html_paths"`
	TabPriority      []string          `yaml:"tab_priority"`
}

// DefaultProfile returns the built-in tables
func DefaultProfile() *Profile {
	return &Profile{
		SectionFolders: map[string]string{
			"Clinical Presentations":       "clinical",
			"Biochemical Presentations":    "biochemical",
			"Haematological Presentations": "haematological",
		},
		DefaultFolder:    "misc",
		ClinicalSections: []string{"Clinical Presentations"},
		LowPriorityDir:   filepath.Join("clinical", "other"),
		HTMLPaths: map[string]string{
			"SUBJECTIVE": "writer_tabs/subjective.html",
			"ROS":        "writer_tabs/ROS.html",
			"PE":         "writer_tabs/physical.html",
			"MSE":        "writer_tabs/MSE.html",
		},
		TabPriority: []string{"SUBJECTIVE", "ROS", "PE", "MSE"},
	}
}

// LoadProfile reads a YAML profile on top of the defaults. An empty path
// returns the defaults; section folder and HTML path entries are merged,
// lists replace the defaults.
func LoadProfile(path string) (*Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return profile, nil
}

// Validate checks the profile tables
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.DefaultFolder) == "" {
		return fmt.Errorf("default_folder cannot be empty")
	}
	if strings.TrimSpace(p.LowPriorityDir) == "" {
		return fmt.Errorf("low_priority_dir cannot be empty")
	}
	if err := validateRelativeDir(p.LowPriorityDir); err != nil {
		return fmt.Errorf("low_priority_dir: %w", err)
	}

	for section, folder := range p.SectionFolders {
		if err := validateRelativeDir(folder); err != nil {
			return fmt.Errorf("section_folders[%q]: %w", section, err)
		}
	}

	for i, a := range p.Aliases {
		if a.Section == "" || a.Presentation == "" {
			return fmt.Errorf("aliases[%d]: section and presentation are required", i)
		}
		if len(a.Keys) == 0 {
			return fmt.Errorf("aliases[%d]: at least one key is required for %q", i, a.Presentation)
		}
	}

	return nil
}

// FolderFor returns the output folder of a section
func (p *Profile) FolderFor(section string) string {
	if folder, ok := p.SectionFolders[section]; ok && folder != "" {
		return folder
	}
	return p.DefaultFolder
}

// IsLowPriority reports whether a presentation name is listed as low priority
func (p *Profile) IsLowPriority(name string) bool {
	for _, lp := range p.LowPriority {
		if strings.EqualFold(strings.TrimSpace(lp), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// validateRelativeDir rejects folders that would escape the output directory
func validateRelativeDir(dir string) error {
	clean := filepath.Clean(dir)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("must be a relative path inside the output directory, got: %s", dir)
	}
	return nil
}
