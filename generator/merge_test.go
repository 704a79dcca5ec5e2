package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/syntaxis/grammar"
	"github.com/teranos/syntaxis/template"
)

func set(names ...string) grammar.FeatureSet {
	fs := grammar.NewFeatureSet()
	for _, n := range names {
		f, err := grammar.ResolveFeature(n)
		if err != nil {
			panic(err)
		}
		fs = fs.With(f)
	}
	return fs
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name      string
		base      grammar.FeatureSet
		overrides grammar.FeatureSet
		want      grammar.FeatureSet
		events    int
	}{
		{"no overrides", set("nom", "masc", "sg"), set(), set("nom", "masc", "sg"), 0},
		{"new category", set("nom", "masc"), set("sg"), set("nom", "masc", "sg"), 0},
		{"same value", set("nom", "masc", "sg"), set("sg"), set("nom", "masc", "sg"), 0},
		{"changed value", set("nom", "masc", "sg"), set("pl"), set("nom", "masc", "pl"), 1},
		{"two changes", set("nom", "masc", "sg"), set("gen", "pl"), set("gen", "masc", "pl"), 2},
		{"empty base", set(), set("present", "active"), set("present", "active"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseBefore := tt.base.String()
			got, events := Merge(tt.base, tt.overrides)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
			assert.Len(t, events, tt.events)
			assert.Equal(t, baseBefore, tt.base.String(), "base must not change")
		})
	}
}

func TestMergeEventValues(t *testing.T) {
	_, events := Merge(set("nom", "masc", "sg"), set("pl"))
	require.Len(t, events, 1)
	assert.Equal(t, grammar.CategoryNumber, events[0].Category)
	assert.Equal(t, "sg", events[0].OldValue)
	assert.Equal(t, "pl", events[0].NewValue)
}

func TestResolveGroupFeatures(t *testing.T) {
	ast, err := template.Parse("(art noun)@{nom:masc:sg} | (verb)@{present:active:ter:sg} | (adj)@$1 | (noun)@$3")
	require.NoError(t, err)

	first, err := ResolveGroupFeatures(ast, 0)
	require.NoError(t, err)
	assert.True(t, first.Equal(set("nom", "masc", "sg")))

	third, err := ResolveGroupFeatures(ast, 2)
	require.NoError(t, err)
	assert.True(t, third.Equal(first), "$1 inherits group 1")

	// chains resolve recursively
	fourth, err := ResolveGroupFeatures(ast, 3)
	require.NoError(t, err)
	assert.True(t, fourth.Equal(first))

	_, err = ResolveGroupFeatures(ast, 4)
	assert.Error(t, err)
}

func TestResolveGroupFeaturesRejectsBadReference(t *testing.T) {
	// hand-built AST; the parser never produces a forward reference
	ast := &template.AST{
		Version: template.SyntaxGrouped,
		Groups: []template.Group{
			{ReferenceID: 1, References: 2, Tokens: []template.Token{{LexicalType: grammar.Noun}}},
			{ReferenceID: 2, GroupFeatures: set("nom"), Tokens: []template.Token{{LexicalType: grammar.Noun}}},
		},
	}
	_, err := ResolveGroupFeatures(ast, 0)
	assert.Error(t, err)
}
