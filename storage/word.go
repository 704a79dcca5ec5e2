// Package storage persists the lexicon and saved templates in SQLite.
//
// The lexicon does no inflection of its own: every surface form is imported
// from seed files together with the features it realizes, and lookups are
// plain AND queries over those feature columns.
package storage

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
)

// Word is one lexicon entry selected for a request. Forms holds the surface
// forms of the lemma that realize the requested features.
type Word struct {
	ID           int64             `json:"-"`
	Lemma        string            `json:"lemma"`
	LexicalType  string            `json:"lexical"`
	Forms        []string          `json:"forms"`
	Translations []string          `json:"translations"`
	Features     map[string]string `json:"features"`
}

// String returns the first matching surface form, or the lemma if there is none
func (w *Word) String() string {
	if w == nil {
		return ""
	}
	if len(w.Forms) > 0 {
		return w.Forms[0]
	}
	return w.Lemma
}

// WordEntry is a lemma as written in seed files and accepted by AddWord.
//
// Forms maps a feature spec to the surface form realizing it. A spec uses
// the template feature names separated by ':' or ',' ("nom:masc:sg"),
// abbreviations included. Invariable words may omit Forms; the lemma
// becomes their only form.
type WordEntry struct {
	Lexical      string            `json:"lexical" yaml:"lexical" toml:"lexical"`
	Lemma        string            `json:"lemma" yaml:"lemma" toml:"lemma"`
	Translations []string          `json:"translations" yaml:"translations" toml:"translations"`
	Forms        map[string]string `json:"forms,omitempty" yaml:"forms,omitempty" toml:"forms,omitempty"`
}

// formRow is one resolved row of the forms table
type formRow struct {
	form     string
	features grammar.FeatureSet
}

// normalize returns the entry in canonical shape: NFC lemma and forms,
// canonical lexical type, trimmed translations without duplicates.
func (e WordEntry) normalize() (grammar.LexicalType, string, []string, []formRow, error) {
	lt, err := grammar.ResolveLexical(e.Lexical)
	if err != nil {
		return "", "", nil, nil, errors.Mark(errors.Wrapf(err, "lemma %q", e.Lemma), errors.ErrInvalidRequest)
	}

	lemma := norm.NFC.String(strings.TrimSpace(e.Lemma))
	if lemma == "" {
		return "", "", nil, nil, errors.NewInvalidRequestError("lemma cannot be empty")
	}

	translations := make([]string, 0, len(e.Translations))
	seen := make(map[string]bool, len(e.Translations))
	for _, tr := range e.Translations {
		tr = strings.TrimSpace(tr)
		if tr == "" || seen[tr] {
			continue
		}
		seen[tr] = true
		translations = append(translations, tr)
	}
	if len(translations) == 0 {
		return "", "", nil, nil, errors.NewInvalidRequestError("lemma %q has no translations", lemma)
	}

	if len(e.Forms) == 0 {
		if !lt.IsInvariable() {
			return "", "", nil, nil, errors.NewInvalidRequestError("%s %q has no forms", lt, lemma)
		}
		return lt, lemma, translations, []formRow{{form: lemma, features: grammar.NewFeatureSet()}}, nil
	}

	specs := make([]string, 0, len(e.Forms))
	for spec := range e.Forms {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	rows := make([]formRow, 0, len(specs))
	for _, spec := range specs {
		form := norm.NFC.String(strings.TrimSpace(e.Forms[spec]))
		if form == "" {
			return "", "", nil, nil, errors.NewInvalidRequestError("%s %q: empty form for %q", lt, lemma, spec)
		}
		fs, err := ParseFeatureSpec(spec)
		if err != nil {
			return "", "", nil, nil, errors.Wrapf(err, "%s %q", lt, lemma)
		}
		rows = append(rows, formRow{form: form, features: fs})
	}
	return lt, lemma, translations, rows, nil
}

// ParseFeatureSpec resolves a seed feature spec such as "nom:masc:sg" into a
// FeatureSet. "-" and the empty string denote no features. Wildcards are
// rejected since a stored form always realizes concrete values.
func ParseFeatureSpec(spec string) (grammar.FeatureSet, error) {
	fs := grammar.NewFeatureSet()
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "-" {
		return fs, nil
	}

	parts := strings.FieldsFunc(spec, func(r rune) bool { return r == ':' || r == ',' })
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := grammar.ResolveFeature(part)
		if err != nil {
			return fs, errors.Mark(errors.Wrapf(err, "feature spec %q", spec), errors.ErrInvalidRequest)
		}
		if f.IsWildcard() {
			return fs, errors.NewInvalidRequestError("feature spec %q: wildcard %s cannot be stored", spec, f.Name)
		}
		next, ok := fs.Add(f)
		if !ok {
			return fs, errors.NewInvalidRequestError("feature spec %q: duplicate %s", spec, f.Category)
		}
		fs = next
	}
	return fs, nil
}
