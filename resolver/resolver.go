// Package resolver maps presentation display names to keys of the etiology
// indexes.
package resolver

import (
	"strings"

	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/labels"
)

// Alias forces the index keys of one (section, presentation) pair
type Alias struct {
	Section      string   `yaml:"section"`
	Presentation string   `yaml:"presentation"`
	Keys         []string `yaml:"keys"`
}

type aliasKey struct {
	section      string
	presentation string
}

// Resolver implements interfaces.KeyResolver
type Resolver struct {
	aliases          map[aliasKey][]string
	clinicalSections map[string]bool
}

// New builds a resolver. Sections listed in clinicalSections are looked up in
// the clinical index, every other section in the non-clinical one.
func New(aliases []Alias, clinicalSections []string) *Resolver {
	r := &Resolver{
		aliases:          make(map[aliasKey][]string, len(aliases)),
		clinicalSections: make(map[string]bool, len(clinicalSections)),
	}
	for _, a := range aliases {
		r.aliases[aliasKey{a.Section, a.Presentation}] = append([]string{}, a.Keys...)
	}
	for _, s := range clinicalSections {
		r.clinicalSections[s] = true
	}
	return r
}

// IsClinical reports whether section uses the clinical index
func (r *Resolver) IsClinical(section string) bool {
	return r.clinicalSections[section]
}

// Resolve returns the index keys matching a presentation, possibly none
func (r *Resolver) Resolve(name, section string, clinical, nonClinical *jsontree.Node) []string {
	keys, _ := r.ResolveRule(name, section, clinical, nonClinical)
	return keys
}

// ResolveRule is Resolve plus the rule that produced the keys. Rules are
// tried in order; the first that matches wins:
//  1. alias table, exact (section, name) pair
//  2. case-insensitive exact key
//  3. compact form equality, first key found
//  4. every key whose compact form contains the compact query
func (r *Resolver) ResolveRule(name, section string, clinical, nonClinical *jsontree.Node) ([]string, entities.MatchRule) {
	if keys, ok := r.aliases[aliasKey{section, name}]; ok {
		return append([]string{}, keys...), entities.MatchAlias
	}

	index := nonClinical
	if r.IsClinical(section) {
		index = clinical
	}
	if !index.IsObject() {
		return nil, entities.MatchNone
	}
	keys := index.Keys()

	query := strings.TrimSpace(name)
	for _, k := range keys {
		if strings.EqualFold(strings.TrimSpace(k), query) {
			return []string{k}, entities.MatchExact
		}
	}

	compactQuery := labels.Compact(query)
	if compactQuery == "" {
		return nil, entities.MatchNone
	}

	for _, k := range keys {
		if labels.Compact(k) == compactQuery {
			return []string{k}, entities.MatchNormalized
		}
	}

	var contained []string
	for _, k := range keys {
		if strings.Contains(labels.Compact(k), compactQuery) {
			contained = append(contained, k)
		}
	}
	if len(contained) > 0 {
		return contained, entities.MatchSubstring
	}

	return nil, entities.MatchNone
}
