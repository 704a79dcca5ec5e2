package grammar

import (
	"encoding/json"
	"sort"
	"strings"
)

// Feature is a single grammatical value tagged with its category.
// Two features are equal when both name and category match.
type Feature struct {
	Name     string   `json:"name" yaml:"name"`
	Category Category `json:"category" yaml:"category"`
}

// String returns the feature name.
func (f Feature) String() string {
	return f.Name
}

// IsWildcard reports whether f is a wildcard such as *gender*.
func (f Feature) IsWildcard() bool {
	return strings.HasPrefix(f.Name, "*") && strings.HasSuffix(f.Name, "*")
}

// FeatureSet is an ordered collection with at most one feature per
// category. The zero value is an empty set. Methods never mutate the
// receiver, so sets can be shared freely between ASTs and goroutines.
type FeatureSet struct {
	items []Feature
}

// NewFeatureSet builds a set from features, later entries replacing
// earlier ones of the same category.
func NewFeatureSet(features ...Feature) FeatureSet {
	var fs FeatureSet
	for _, f := range features {
		fs = fs.With(f)
	}
	return fs
}

// Len returns the number of features.
func (fs FeatureSet) Len() int {
	return len(fs.items)
}

// IsEmpty reports whether the set holds no features.
func (fs FeatureSet) IsEmpty() bool {
	return len(fs.items) == 0
}

// Get returns the feature of category c.
func (fs FeatureSet) Get(c Category) (Feature, bool) {
	for _, f := range fs.items {
		if f.Category == c {
			return f, true
		}
	}
	return Feature{}, false
}

// Has reports whether the set contains f exactly.
func (fs FeatureSet) Has(f Feature) bool {
	got, ok := fs.Get(f.Category)
	return ok && got == f
}

// With returns a copy of fs where f replaces any feature of the same
// category. A new category is appended at the end.
func (fs FeatureSet) With(f Feature) FeatureSet {
	out := make([]Feature, 0, len(fs.items)+1)
	replaced := false
	for _, existing := range fs.items {
		if existing.Category == f.Category {
			out = append(out, f)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, f)
	}
	return FeatureSet{items: out}
}

// Add returns a copy of fs with f appended, or false when the category
// is already taken.
func (fs FeatureSet) Add(f Feature) (FeatureSet, bool) {
	if _, ok := fs.Get(f.Category); ok {
		return fs, false
	}
	return fs.With(f), true
}

// Overlay returns fs with every feature of other applied on top.
func (fs FeatureSet) Overlay(other FeatureSet) FeatureSet {
	out := fs
	for _, f := range other.items {
		out = out.With(f)
	}
	return out
}

// Features returns a copy of the features in insertion order.
func (fs FeatureSet) Features() []Feature {
	out := make([]Feature, len(fs.items))
	copy(out, fs.items)
	return out
}

// Map returns category name to feature name for every feature.
func (fs FeatureSet) Map() map[string]string {
	m := make(map[string]string, len(fs.items))
	for _, f := range fs.items {
		m[string(f.Category)] = f.Name
	}
	return m
}

// LookupMap is Map without wildcard features. It is the constraint set
// handed to the lexicon.
func (fs FeatureSet) LookupMap() map[string]string {
	m := make(map[string]string, len(fs.items))
	for _, f := range fs.items {
		if f.IsWildcard() {
			continue
		}
		m[string(f.Category)] = f.Name
	}
	return m
}

// Equal reports whether both sets hold the same features, ignoring order.
func (fs FeatureSet) Equal(other FeatureSet) bool {
	if fs.Len() != other.Len() {
		return false
	}
	for _, f := range fs.items {
		if !other.Has(f) {
			return false
		}
	}
	return true
}

// String renders the feature names joined by colons, in insertion order.
func (fs FeatureSet) String() string {
	names := make([]string, len(fs.items))
	for i, f := range fs.items {
		names[i] = f.Name
	}
	return strings.Join(names, ":")
}

// MarshalJSON encodes the set as a category to name object.
func (fs FeatureSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Map())
}

// UnmarshalJSON decodes a category to name object. Categories are
// restored in canonical order.
func (fs *FeatureSet) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*fs = FromMap(m)
	return nil
}

// MarshalYAML encodes the set as a category to name mapping.
func (fs FeatureSet) MarshalYAML() (interface{}, error) {
	return fs.Map(), nil
}

// FromMap builds a set from a category to name map in canonical
// category order. Unknown categories keep their name and sort last.
func FromMap(m map[string]string) FeatureSet {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := categoryRank(Category(keys[i])), categoryRank(Category(keys[j]))
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	var fs FeatureSet
	for _, k := range keys {
		fs = fs.With(Feature{Name: m[k], Category: Category(k)})
	}
	return fs
}

func categoryRank(c Category) int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return len(Categories)
}
