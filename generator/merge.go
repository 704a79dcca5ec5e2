package generator

import (
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
	"github.com/teranos/syntaxis/template"
)

// OverrideEvent records a token's direct feature replacing a different
// value of the same category inherited from its group.
type OverrideEvent struct {
	Group       int                 `json:"group"` // 1-based reference id
	Token       int                 `json:"token"` // 0-based position within the group
	LexicalType grammar.LexicalType `json:"lexical"`
	Category    grammar.Category    `json:"category"`
	OldValue    string              `json:"old_value"`
	NewValue    string              `json:"new_value"`
}

// Merge overlays overrides on base. A feature in overrides replaces the
// base feature of the same category; an event is produced only when the
// value actually changes. Neither input is modified.
func Merge(base, overrides grammar.FeatureSet) (grammar.FeatureSet, []OverrideEvent) {
	merged := base
	var events []OverrideEvent
	for _, f := range overrides.Features() {
		if old, ok := merged.Get(f.Category); ok && old.Name != f.Name {
			events = append(events, OverrideEvent{
				Category: f.Category,
				OldValue: old.Name,
				NewValue: f.Name,
			})
		}
		merged = merged.With(f)
	}
	return merged, events
}

// ResolveGroupFeatures computes the features group i (0-based) hands to
// its tokens. A group without a reference uses its own features; a group
// with one starts from the referenced group's resolved features and
// applies its own on top. References always point backwards in a parsed
// AST, so the recursion is finite.
func ResolveGroupFeatures(ast *template.AST, i int) (grammar.FeatureSet, error) {
	if i < 0 || i >= len(ast.Groups) {
		return grammar.FeatureSet{}, errors.AssertionFailedf("group index %d out of range", i)
	}
	g := ast.Groups[i]
	if !g.HasReference() {
		return g.GroupFeatures, nil
	}

	target := g.References - 1
	if target < 0 || target >= i {
		return grammar.FeatureSet{}, errors.AssertionFailedf(
			"group %d references $%d, which is not an earlier group", g.ReferenceID, g.References)
	}

	inherited, err := ResolveGroupFeatures(ast, target)
	if err != nil {
		return grammar.FeatureSet{}, err
	}
	return inherited.Overlay(g.GroupFeatures), nil
}
