package grammar

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPrefixIndexLookup(t *testing.T) {
	idx := NewPrefixIndex([]string{"nom", "neut", "ind", "indefinite", "interrogative", "nom"})

	tests := []struct {
		token      string
		kind       MatchKind
		name       string
		candidates []string
	}{
		{"nom", Exact, "nom", nil},
		{"no", Unique, "nom", nil},
		{"ne", Unique, "neut", nil},
		{"n", Ambiguous, "", []string{"neut", "nom"}},
		{"ind", Exact, "ind", nil},
		{"inde", Unique, "indefinite", nil},
		{"in", Ambiguous, "", []string{"ind", "indefinite", "interrogative"}},
		{"xyz", NotFound, "", nil},
		{"", NotFound, "", nil},
		{"nominal", NotFound, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			m := idx.Lookup(tt.token)
			assert.Equal(t, tt.kind, m.Kind)
			assert.Equal(t, tt.name, m.Name)
			assert.Equal(t, tt.candidates, m.Candidates)
		})
	}

	assert.Equal(t, []string{"ind", "indefinite", "interrogative", "neut", "nom"}, idx.Names())
}

func TestResolveFeature(t *testing.T) {
	tests := []struct {
		token    string
		name     string
		category Category
	}{
		{"nom", "nom", CategoryCase},
		{"no", "nom", CategoryCase},
		{"ma", "masc", CategoryGender},
		{"sg", "sg", CategoryNumber},
		{"pres", "present", CategoryTense},
		{"act", "active", CategoryVoice},
		{"ind", "ind", CategoryMood},
		{"ter", "ter", CategoryPerson},
		{"def", "definite", CategoryType},
		{"*g", WildcardGender, CategoryGender},
		{" NOM ", "nom", CategoryCase},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			f, err := ResolveFeature(tt.token)
			require.NoError(t, err)
			assert.Equal(t, Feature{Name: tt.name, Category: tt.category}, f)
		})
	}
}

func TestResolveFeatureErrors(t *testing.T) {
	_, err := ResolveFeature("a")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, Ambiguous, lookupErr.Kind)
	assert.Equal(t, DomainFeature, lookupErr.Domain)
	assert.Equal(t, []string{"acc", "active", "aorist"}, lookupErr.Candidates)
	assert.Contains(t, err.Error(), "acc, active, aorist")

	_, err = ResolveFeature("xyz")
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, NotFound, lookupErr.Kind)
	assert.Equal(t, "xyz", lookupErr.Token)

	_, err = ResolveFeature("nomm")
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, NotFound, lookupErr.Kind)
	assert.Contains(t, lookupErr.Suggestions, "nom")
}

func TestResolveLexical(t *testing.T) {
	lt, err := ResolveLexical("noun")
	require.NoError(t, err)
	assert.Equal(t, Noun, lt)

	lt, err = ResolveLexical("adj")
	require.NoError(t, err)
	assert.Equal(t, Adjective, lt)

	lt, err = ResolveLexical("prep")
	require.NoError(t, err)
	assert.Equal(t, Preposition, lt)

	_, err = ResolveLexical("ad")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, Ambiguous, lookupErr.Kind)
	assert.Equal(t, DomainLexical, lookupErr.Domain)
	assert.Equal(t, []string{"adjective", "adverb"}, lookupErr.Candidates)

	_, err = ResolveLexical("vreb")
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, NotFound, lookupErr.Kind)
	assert.Contains(t, lookupErr.Suggestions, "verb")
}

func TestLookupIsConcurrencySafe(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, Unique, LookupFeature("mas").Kind)
				assert.Equal(t, Ambiguous, LookupLexical("pr").Kind)
			}
		}()
	}
	wg.Wait()
}

func TestSuggest(t *testing.T) {
	names := []string{"masc", "fem", "neut"}
	assert.Equal(t, []string{"masc"}, Suggest("mas", names))
	assert.Equal(t, []string{"masc"}, Suggest("msc", names))
	assert.Empty(t, Suggest("", names))
	assert.Empty(t, Suggest("zzzzzz", names))
}

func TestFeatureSet(t *testing.T) {
	nom := Feature{Name: "nom", Category: CategoryCase}
	acc := Feature{Name: "acc", Category: CategoryCase}
	masc := Feature{Name: "masc", Category: CategoryGender}
	sg := Feature{Name: "sg", Category: CategoryNumber}

	fs := NewFeatureSet(nom, masc)
	assert.Equal(t, 2, fs.Len())

	_, ok := fs.Add(acc)
	assert.False(t, ok, "second case feature must be rejected")

	withSg, ok := fs.Add(sg)
	require.True(t, ok)
	assert.Equal(t, "nom:masc:sg", withSg.String())
	assert.Equal(t, 2, fs.Len(), "Add must not mutate the receiver")

	replaced := withSg.With(acc)
	assert.Equal(t, "acc:masc:sg", replaced.String())
	assert.True(t, replaced.Has(acc))
	assert.False(t, replaced.Has(nom))

	assert.True(t, NewFeatureSet(sg, masc, nom).Equal(withSg))
	assert.False(t, replaced.Equal(withSg))
}

func TestFeatureSetLookupMapOmitsWildcards(t *testing.T) {
	fs := NewFeatureSet(
		Feature{Name: "nom", Category: CategoryCase},
		Feature{Name: WildcardGender, Category: CategoryGender},
		Feature{Name: "sg", Category: CategoryNumber},
	)
	assert.Equal(t, map[string]string{"case": "nom", "gender": WildcardGender, "number": "sg"}, fs.Map())
	assert.Equal(t, map[string]string{"case": "nom", "number": "sg"}, fs.LookupMap())
}

func TestFeatureSetEncoding(t *testing.T) {
	fs := NewFeatureSet(
		Feature{Name: "sg", Category: CategoryNumber},
		Feature{Name: "nom", Category: CategoryCase},
	)

	data, err := json.Marshal(fs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"case":"nom","number":"sg"}`, string(data))

	var decoded FeatureSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(fs))
	assert.Equal(t, "nom:sg", decoded.String(), "decoding restores canonical order")

	out, err := yaml.Marshal(fs)
	require.NoError(t, err)
	assert.Contains(t, string(out), "case: nom")
}

func TestShapes(t *testing.T) {
	min, max := ShapeOf(Noun).Arity()
	assert.Equal(t, 3, min)
	assert.Equal(t, 3, max)

	min, max = ShapeOf(Pronoun).Arity()
	assert.Equal(t, 3, min)
	assert.Equal(t, 4, max)

	min, max = ShapeOf(Verb).Arity()
	assert.Equal(t, 4, min)
	assert.Equal(t, 4, max)

	assert.True(t, Adverb.IsInvariable())
	assert.False(t, Numeral.IsInvariable())
	assert.True(t, ShapeOf(Verb).Allows(CategoryTense))
	assert.False(t, ShapeOf(Noun).Allows(CategoryTense))

	partial := NewFeatureSet(Feature{Name: "nom", Category: CategoryCase})
	assert.Equal(t, []Category{CategoryGender, CategoryNumber}, ShapeOf(Noun).Missing(partial))
}

func TestFeatureVocabulary(t *testing.T) {
	vocab := FeatureVocabulary()
	assert.Equal(t, []string{"acc", "gen", "nom", "voc"}, vocab[CategoryCase])
	assert.Equal(t, []string{WildcardNumber, "pl", "sg"}, vocab[CategoryNumber])
	assert.Len(t, vocab, len(Categories))
}
