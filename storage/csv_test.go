package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/syntaxis/errors"
)

func TestParseCSV(t *testing.T) {
	input := `lexical,translations,lemma
adv,"here,over here",εδώ
preposition,from,από
conj,"and",και
`
	entries, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, WordEntry{Lexical: "adverb", Lemma: "εδώ", Translations: []string{"here", "over here"}}, entries[0])
	assert.Equal(t, "preposition", entries[1].Lexical)
	assert.Equal(t, "conjunction", entries[2].Lexical)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"empty", "", "csv is empty"},
		{"inflected type", "lexical,translations,lemma\nnoun,house,σπίτι\n", "line 2"},
		{"unknown type", "lexical,translations,lemma\nparticle,x,να\n", "line 2"},
		{"wrong field count", "lexical,translations,lemma\nadverb,here\n", "malformed csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
