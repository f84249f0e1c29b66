package inputs

import (
	"path/filepath"
	"strings"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/logging"
)

// LoadSymptomSchema returns the required symptom keys. An unset schema path
// selects the default key list; a configured but missing file is an error.
func LoadSymptomSchema(res Resource, dataDirs []string) (entities.SymptomSchema, error) {
	if strings.TrimSpace(res.Path) == "" {
		logging.Debug("No symptom schema configured, using default keys")
		return DefaultSchema(), nil
	}

	node, path, err := LoadJSON(res, dataDirs)
	if err != nil {
		return entities.SymptomSchema{}, err
	}

	keys := RequiredSymptomKeys(node)
	if len(keys) == 0 {
		logging.Warn("Symptom schema declares no required keys, using default keys", "path", path)
		return DefaultSchema(), nil
	}

	logging.Info("Loaded symptom schema", "path", filepath.Base(path), "required", len(keys))
	return entities.SymptomSchema{Required: keys, Source: path}, nil
}

// DefaultSchema is the schema used without a schema file
func DefaultSchema() entities.SymptomSchema {
	return entities.SymptomSchema{Required: append([]string{}, entities.DefaultSymptomKeys...)}
}

// RequiredSymptomKeys extracts the ordered required keys of a schema: the
// symptoms node's required list, else its properties keys, else a top-level
// required list. Duplicates and blank keys are dropped.
func RequiredSymptomKeys(schema *jsontree.Node) []string {
	symptoms := schema.Get(entities.KeySymptoms)

	if keys := stringList(symptoms.Get("required")); len(keys) > 0 {
		return keys
	}
	if props := symptoms.Get("properties"); props.IsObject() {
		if keys := dedupe(props.Keys()); len(keys) > 0 {
			return keys
		}
	}
	return stringList(schema.Get("required"))
}

func stringList(node *jsontree.Node) []string {
	var out []string
	for _, it := range node.Items() {
		if s, ok := it.Str(); ok {
			out = append(out, s)
		}
	}
	return dedupe(out)
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	var out []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

