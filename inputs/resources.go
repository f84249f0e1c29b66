// Package inputs locates and reads the JSON resources a run depends on: the
// presentation list, the etiology indexes and the symptom schema.
package inputs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/logging"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Resource describes one input file and where it may be found
type Resource struct {
	Name   string // human readable, e.g. "presentation list"
	Path   string // configured location
	EnvVar string // variable that overrides Path
}

// MissingResourceError is returned when a required resource cannot be found
type MissingResourceError struct {
	Resource Resource
	Searched []string
}

func (e *MissingResourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing %s: expected at %s", e.Resource.Name, e.Resource.Path)
	if len(e.Searched) > 1 {
		fmt.Fprintf(&b, " (also searched %s)", strings.Join(e.Searched[1:], ", "))
	}
	b.WriteString("; ")
	b.WriteString(strings.Join(e.Remediations(), "; "))
	return b.String()
}

// Remediations lists what the user can do about the missing file
func (e *MissingResourceError) Remediations() []string {
	var r []string
	if e.Resource.EnvVar != "" {
		r = append(r, fmt.Sprintf("set %s to the file location", e.Resource.EnvVar))
	}
	r = append(r,
		"add the directory holding it to DATA_DIRS",
		fmt.Sprintf("copy the file to %s", e.Resource.Path),
	)
	return r
}

// Locate returns the first existing candidate for res: the configured path,
// then the same file name inside each data directory
func Locate(res Resource, dataDirs []string) (string, error) {
	if strings.TrimSpace(res.Path) == "" {
		return "", &MissingResourceError{Resource: res}
	}

	candidates := []string{filepath.Clean(res.Path)}
	base := filepath.Base(res.Path)
	for _, dir := range dataDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, base))
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && !info.IsDir() {
			if c != candidates[0] {
				logging.Debug("Resource found in fallback directory", "resource", res.Name, "path", c)
			}
			return c, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", c, err)
		}
	}

	return "", &MissingResourceError{Resource: res, Searched: candidates}
}

// ReadResource reads a file as UTF-8. Content that is not valid UTF-8 is
// decoded from ISO-8859-1, which older exports of the lists use.
func ReadResource(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s from ISO-8859-1: %w", path, err)
	}
	logging.Debug("Decoded resource from ISO-8859-1", "path", path)
	return decoded, nil
}

// LoadJSON locates, reads and parses a resource. Parse errors name the file,
// line and column.
func LoadJSON(res Resource, dataDirs []string) (*jsontree.Node, string, error) {
	path, err := Locate(res, dataDirs)
	if err != nil {
		return nil, "", err
	}

	data, err := ReadResource(path)
	if err != nil {
		return nil, path, err
	}

	node, err := jsontree.Parse(data)
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return node, path, nil
}

// LoadIndex loads an etiology index, which must be a JSON object
func LoadIndex(res Resource, dataDirs []string) (*jsontree.Node, error) {
	node, path, err := LoadJSON(res, dataDirs)
	if err != nil {
		return nil, err
	}
	if !node.IsObject() {
		return nil, fmt.Errorf("%s: %s must be a JSON object, got %s", filepath.Base(path), res.Name, node.Kind())
	}

	logging.Info("Loaded etiology index", "resource", res.Name, "path", path, "keys", node.Len())
	return node, nil
}
