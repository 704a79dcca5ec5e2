package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/syntaxis/grammar"
)

func TestParseGrouped_Basic(t *testing.T) {
	ast, err := ParseGrouped("(article adjective noun)@{nom:masc:sg}")
	require.NoError(t, err)

	assert.Equal(t, SyntaxGrouped, ast.Version)
	require.Len(t, ast.Groups, 1)
	g := ast.Groups[0]
	assert.Equal(t, 1, g.ReferenceID)
	assert.False(t, g.HasReference())
	require.Len(t, g.Tokens, 3)
	assert.Equal(t, grammar.Article, g.Tokens[0].LexicalType)
	assert.Equal(t, grammar.Adjective, g.Tokens[1].LexicalType)
	assert.Equal(t, grammar.Noun, g.Tokens[2].LexicalType)
	assert.True(t, g.GroupFeatures.Equal(set("nom", "masc", "sg")))
}

func TestParseGrouped_ReferencesAndDirectFeatures(t *testing.T) {
	ast, err := ParseGrouped("(art noun)@{nom:masc:sg} | (verb{present:active:ter})@{sg} | (art noun{pl})@$1")
	require.NoError(t, err)
	require.Len(t, ast.Groups, 3)

	assert.Equal(t, 2, ast.Groups[1].ReferenceID)
	assert.True(t, ast.Groups[1].Tokens[0].DirectFeatures.Equal(set("present", "active", "ter")))

	third := ast.Groups[2]
	assert.Equal(t, 3, third.ReferenceID)
	assert.Equal(t, 1, third.References)
	assert.True(t, third.GroupFeatures.IsEmpty())
	assert.True(t, third.Tokens[0].DirectFeatures.IsEmpty())
	assert.True(t, third.Tokens[1].DirectFeatures.Equal(set("pl")))
}

func TestParseGrouped_CommaSeparatedFeatures(t *testing.T) {
	ast, err := ParseGrouped("(noun)@{nom, masc, sg}")
	require.NoError(t, err)
	assert.True(t, ast.Groups[0].GroupFeatures.Equal(set("nom", "masc", "sg")))
}

func TestParseGrouped_ShapeRulesNotApplied(t *testing.T) {
	// group features are shared, so per-type arity is not enforced here
	ast, err := ParseGrouped("(noun verb)@{sg}")
	require.NoError(t, err)
	assert.Equal(t, 2, ast.TokenCount())
}

func TestParseGrouped_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		kind     ErrorKind
	}{
		{"unbalanced parens", "(noun@{nom:masc:sg}", UnbalancedDelimiters},
		{"unbalanced braces", "(noun)@{nom:masc:sg", UnbalancedDelimiters},
		{"extra close brace", "(noun)@{nom:masc:sg}}", UnbalancedDelimiters},
		{"empty group", "()@{nom:masc:sg}", EmptyGroup},
		{"whitespace group", "(   )@{nom:masc:sg}", EmptyGroup},
		{"no groups", "(noun)", NoTokensFound},
		{"no groups, bare features", "(noun)@nom", NoTokensFound},
		{"unknown lexical", "(nuon)@{nom:masc:sg}", UnknownLexicalType},
		{"ambiguous lexical", "(pr)@{nom:masc:sg}", AmbiguousLexicalType},
		{"unknown feature", "(noun)@{nom:xyz:sg}", UnknownFeature},
		{"ambiguous feature", "(noun)@{n:masc:sg}", AmbiguousFeature},
		{"unknown direct feature", "(noun{xyz})@{nom:masc:sg}", UnknownFeature},
		{"duplicate group feature", "(noun)@{nom:acc:sg}", InvalidOrDuplicateFeature},
		{"duplicate direct feature", "(noun{sg:pl})@{nom:masc}", InvalidOrDuplicateFeature},
		{"reference past end", "(noun)@{nom:masc:sg} (adj)@$3", NonExistentReference},
		{"reference zero", "(noun)@{nom:masc:sg} (adj)@$0", NonExistentReference},
		{"reference overflow", "(noun)@{nom:masc:sg} (adj)@$99999999999999999999", NonExistentReference},
		{"self reference", "(noun)@{nom:masc:sg} (adj)@$2", ForwardOrSelfReference},
		{"forward reference", "(noun)@$2 (adj)@{nom:masc:sg}", ForwardOrSelfReference},
		{"first group self", "(noun)@$1", ForwardOrSelfReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGrouped(tt.template)
			requireKind(t, err, tt.kind)
		})
	}
}

func TestParseGrouped_NonExistentCheckedBeforeForward(t *testing.T) {
	// $5 is both forward and missing; missing is reported
	_, err := ParseGrouped("(noun)@$5 (adj)@{nom:masc:sg}")
	requireKind(t, err, NonExistentReference)
}

func TestParseGrouped_SuggestionsForTypos(t *testing.T) {
	_, err := ParseGrouped("(noun)@{nomm:masc:sg}")
	pe := requireKind(t, err, UnknownFeature)
	assert.Contains(t, pe.Suggestions, "nom")
	assert.Contains(t, pe.Error(), "Did you mean: nom")
}
