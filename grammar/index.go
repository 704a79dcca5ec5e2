package grammar

import (
	"sort"
	"strings"
)

// MatchKind tags the outcome of a prefix lookup.
type MatchKind int

const (
	NotFound MatchKind = iota
	Exact
	Unique
	Ambiguous
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Match is the result of a PrefixIndex lookup. Name is set for Exact and
// Unique; Candidates is set for Ambiguous.
type Match struct {
	Kind       MatchKind
	Name       string
	Candidates []string
}

// Resolved reports whether the lookup produced a single name.
func (m Match) Resolved() bool {
	return m.Kind == Exact || m.Kind == Unique
}

// PrefixIndex resolves abbreviations against a closed set of names.
// Names are kept sorted, so every name sharing a prefix sits in one
// contiguous run found by binary search.
type PrefixIndex struct {
	names []string
}

// NewPrefixIndex builds an index over names. Duplicates are dropped.
func NewPrefixIndex(names []string) *PrefixIndex {
	sorted := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			sorted = append(sorted, n)
		}
	}
	sort.Strings(sorted)
	return &PrefixIndex{names: sorted}
}

// Names returns the indexed names in sorted order.
func (idx *PrefixIndex) Names() []string {
	out := make([]string, len(idx.names))
	copy(out, idx.names)
	return out
}

// Lookup resolves token. An exact name always wins over longer names it
// prefixes; otherwise a single prefix candidate is Unique and several are
// Ambiguous. The empty token never matches.
func (idx *PrefixIndex) Lookup(token string) Match {
	if token == "" {
		return Match{Kind: NotFound}
	}

	start := sort.SearchStrings(idx.names, token)
	if start < len(idx.names) && idx.names[start] == token {
		return Match{Kind: Exact, Name: token}
	}

	end := start
	for end < len(idx.names) && strings.HasPrefix(idx.names[end], token) {
		end++
	}

	switch end - start {
	case 0:
		return Match{Kind: NotFound}
	case 1:
		return Match{Kind: Unique, Name: idx.names[start]}
	default:
		candidates := make([]string, end-start)
		copy(candidates, idx.names[start:end])
		return Match{Kind: Ambiguous, Candidates: candidates}
	}
}
