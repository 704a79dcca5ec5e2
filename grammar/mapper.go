package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Domain names the vocabulary a lookup ran against.
type Domain string

const (
	DomainFeature Domain = "feature"
	DomainLexical Domain = "lexical type"
)

// LookupError reports a token that did not resolve to exactly one name.
type LookupError struct {
	Domain      Domain
	Kind        MatchKind // NotFound or Ambiguous
	Token       string
	Candidates  []string // set when Ambiguous
	Suggestions []string // set when NotFound and something is close
}

func (e *LookupError) Error() string {
	if e.Kind == Ambiguous {
		return fmt.Sprintf("ambiguous %s %q: could be %s", e.Domain, e.Token, strings.Join(e.Candidates, ", "))
	}
	msg := fmt.Sprintf("unknown %s %q", e.Domain, e.Token)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

var (
	featureIndex *PrefixIndex
	lexicalIndex *PrefixIndex
)

func init() {
	names := make([]string, 0, len(vocabulary))
	for n := range vocabulary {
		names = append(names, n)
	}
	featureIndex = NewPrefixIndex(names)

	lexical := make([]string, len(LexicalTypes))
	for i, lt := range LexicalTypes {
		lexical[i] = string(lt)
	}
	lexicalIndex = NewPrefixIndex(lexical)
}

// ResolveFeature maps a possibly abbreviated feature token to its
// canonical Feature. Tokens are trimmed and lowercased first.
func ResolveFeature(token string) (Feature, error) {
	token = normalizeToken(token)
	m := featureIndex.Lookup(token)
	if !m.Resolved() {
		return Feature{}, lookupError(DomainFeature, token, m, featureIndex)
	}
	return Feature{Name: m.Name, Category: vocabulary[m.Name]}, nil
}

// ResolveLexical maps a possibly abbreviated lexical type token to its
// canonical LexicalType.
func ResolveLexical(token string) (LexicalType, error) {
	token = normalizeToken(token)
	m := lexicalIndex.Lookup(token)
	if !m.Resolved() {
		return "", lookupError(DomainLexical, token, m, lexicalIndex)
	}
	return LexicalType(m.Name), nil
}

// LookupFeature exposes the raw tagged result for a feature token.
func LookupFeature(token string) Match {
	return featureIndex.Lookup(normalizeToken(token))
}

// LookupLexical exposes the raw tagged result for a lexical type token.
func LookupLexical(token string) Match {
	return lexicalIndex.Lookup(normalizeToken(token))
}

func lookupError(domain Domain, token string, m Match, idx *PrefixIndex) *LookupError {
	e := &LookupError{Domain: domain, Kind: m.Kind, Token: token}
	if m.Kind == Ambiguous {
		e.Candidates = m.Candidates
	} else {
		e.Kind = NotFound
		e.Suggestions = Suggest(token, idx.names)
	}
	return e
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 2

// Suggest returns up to three names close to token: those within a small
// edit distance, plus those containing token's letters in order.
func Suggest(token string, names []string) []string {
	if token == "" {
		return nil
	}

	type scored struct {
		name     string
		distance int
	}
	var hits []scored
	seen := map[string]bool{}

	for _, n := range names {
		if d := fuzzy.LevenshteinDistance(token, n); d <= maxSuggestionDistance {
			hits = append(hits, scored{n, d})
			seen[n] = true
		}
	}
	if len(token) >= 2 {
		for _, r := range fuzzy.RankFindFold(token, names) {
			if !seen[r.Target] {
				hits = append(hits, scored{r.Target, r.Distance + maxSuggestionDistance})
				seen[r.Target] = true
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].name < hits[j].name
	})

	var out []string
	for i := 0; i < len(hits) && i < 3; i++ {
		out = append(out, hits[i].name)
	}
	return out
}

// FeatureVocabulary returns every canonical feature name grouped by category.
func FeatureVocabulary() map[Category][]string {
	out := make(map[Category][]string, len(Categories))
	for _, c := range Categories {
		out[c] = FeatureNames(c)
	}
	return out
}
