// Package template parses the two template syntaxes into a common AST.
//
// Syntax A (bracket): one token per bracketed span.
//
//	[article:nom:masc:sg] [noun:nom:masc:sg] [verb:present:active:ter:sg]
//
// Syntax B (grouped): tokens share group features; a later group may
// inherit an earlier group's features with $N; a token may override
// inherited features inline.
//
//	(article noun)@{nom:masc:sg} | (adjective{pl})@$1
//
// Abbreviations resolve through the grammar package: "no" is nom,
// "adj" is adjective. ASTs are built fresh per call and never mutated.
package template

import (
	"github.com/teranos/syntaxis/grammar"
)

// SyntaxVersion identifies which grammar produced an AST
type SyntaxVersion int

const (
	SyntaxBracket SyntaxVersion = 1
	SyntaxGrouped SyntaxVersion = 2
)

func (v SyntaxVersion) String() string {
	switch v {
	case SyntaxBracket:
		return "bracket"
	case SyntaxGrouped:
		return "grouped"
	default:
		return "unknown"
	}
}

// Token is one word request
type Token struct {
	LexicalType    grammar.LexicalType `json:"lexical" yaml:"lexical"`
	DirectFeatures grammar.FeatureSet  `json:"direct_features" yaml:"direct_features"`
}

// Group is a run of tokens sharing features. ReferenceID is the group's
// 1-based position. References is the ReferenceID of an earlier group
// whose resolved features this group inherits, or 0 for none.
type Group struct {
	Tokens        []Token            `json:"tokens" yaml:"tokens"`
	GroupFeatures grammar.FeatureSet `json:"group_features" yaml:"group_features"`
	ReferenceID   int                `json:"reference_id" yaml:"reference_id"`
	References    int                `json:"references,omitempty" yaml:"references,omitempty"`
}

// HasReference reports whether the group inherits from another group
func (g Group) HasReference() bool {
	return g.References != 0
}

// AST is a parsed template
type AST struct {
	Groups  []Group       `json:"groups" yaml:"groups"`
	Version SyntaxVersion `json:"syntax_version" yaml:"syntax_version"`
}

// TokenCount returns the number of tokens across all groups
func (a *AST) TokenCount() int {
	n := 0
	for _, g := range a.Groups {
		n += len(g.Tokens)
	}
	return n
}

// Group returns the group with the given 1-based reference id
func (a *AST) Group(referenceID int) (Group, bool) {
	if referenceID < 1 || referenceID > len(a.Groups) {
		return Group{}, false
	}
	return a.Groups[referenceID-1], true
}
