package template

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/syntaxis/grammar"
)

var (
	groupPattern      = regexp.MustCompile(`\(([^)]+)\)@(\{[^}]+\}|\$\d+)`)
	emptyGroupPattern = regexp.MustCompile(`\(\s*\)@`)
	tokenPattern      = regexp.MustCompile(`(\w+)(?:\{([^}]*)\})?`)
)

// ParseGrouped parses the grouped syntax:
//
//	(t1 t2{direct})@{f1:f2} | (t3)@$1
//
// Text between groups, including the conventional "|" separator, is
// ignored. References are validated once all groups are known.
func ParseGrouped(text string) (*AST, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewParseError(EmptyTemplate, "template is empty")
	}

	if err := checkDelimiters(text); err != nil {
		return nil, err
	}

	if loc := emptyGroupPattern.FindStringIndex(text); loc != nil {
		return nil, NewParseError(EmptyGroup, "group has no tokens").
			At(text, text[loc[0]:loc[1]], loc[0])
	}

	matches := groupPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, Newf(NoTokensFound, "no (tokens)@{features} groups found in %q", text).
			At(text, "", 0)
	}

	groups := make([]Group, 0, len(matches))
	spans := make([]span, 0, len(matches))

	for i, m := range matches {
		whole := span{text: text[m[0]:m[1]], offset: m[0]}
		tokensSpan := span{text: text[m[2]:m[3]], offset: m[2]}
		specSpan := span{text: text[m[4]:m[5]], offset: m[4]}

		tokens, err := parseGroupTokens(text, tokensSpan)
		if err != nil {
			return nil, err
		}

		group := Group{Tokens: tokens, ReferenceID: i + 1}

		if strings.HasPrefix(specSpan.text, "$") {
			ref, convErr := strconv.Atoi(specSpan.text[1:])
			if convErr != nil {
				return nil, Newf(NonExistentReference, "reference %s is out of range", specSpan.text).
					At(text, specSpan.text, specSpan.offset)
			}
			if ref == 0 {
				// 0 means "no reference" in the AST, so $0 is rejected here
				return nil, Newf(NonExistentReference, "reference $0 does not exist; groups are numbered from 1").
					At(text, specSpan.text, specSpan.offset)
			}
			group.References = ref
		} else {
			inner := span{text: specSpan.text[1 : len(specSpan.text)-1], offset: specSpan.offset + 1}
			features, err := parseFeatureList(text, inner)
			if err != nil {
				return nil, err
			}
			group.GroupFeatures = features
		}

		groups = append(groups, group)
		spans = append(spans, whole)
	}

	if err := validateReferences(text, groups, spans); err != nil {
		return nil, err
	}

	return &AST{Groups: groups, Version: SyntaxGrouped}, nil
}

// checkDelimiters rejects templates whose parentheses or braces do not pair up
func checkDelimiters(text string) error {
	pairs := []struct{ open, close string }{{"(", ")"}, {"{", "}"}}
	for _, p := range pairs {
		opens, closes := strings.Count(text, p.open), strings.Count(text, p.close)
		if opens == closes {
			continue
		}
		offset := strings.LastIndex(text, p.open)
		fragment := p.open
		if closes > opens {
			offset = strings.LastIndex(text, p.close)
			fragment = p.close
		}
		return Newf(UnbalancedDelimiters, "unbalanced %s%s: %d opening, %d closing",
			p.open, p.close, opens, closes).
			At(text, fragment, offset)
	}
	return nil
}

// parseGroupTokens resolves the whitespace-separated tokens of a group
func parseGroupTokens(input string, s span) ([]Token, error) {
	var tokens []Token
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(s.text, -1) {
		name := span{text: s.text[m[2]:m[3]], offset: s.offset + m[2]}

		lexical, err := grammar.ResolveLexical(name.text)
		if err != nil {
			return nil, fromLookup(err).At(input, name.text, name.offset)
		}

		token := Token{LexicalType: lexical}
		if m[4] >= 0 {
			direct, err := parseFeatureList(input, span{text: s.text[m[4]:m[5]], offset: s.offset + m[4]})
			if err != nil {
				return nil, err
			}
			token.DirectFeatures = direct
		}
		tokens = append(tokens, token)
	}

	if len(tokens) == 0 {
		return nil, NewParseError(EmptyGroup, "group has no tokens").
			At(input, s.text, s.offset)
	}
	return tokens, nil
}

// parseFeatureList resolves a colon- or comma-separated feature list.
// Empty entries are skipped.
func parseFeatureList(input string, s span) (grammar.FeatureSet, error) {
	var features grammar.FeatureSet
	for _, part := range splitSpans(s, ":,") {
		if part.text == "" {
			continue
		}
		f, err := grammar.ResolveFeature(part.text)
		if err != nil {
			return grammar.FeatureSet{}, fromLookup(err).At(input, part.text, part.offset)
		}
		var ok bool
		if features, ok = features.Add(f); !ok {
			existing, _ := features.Get(f.Category)
			return grammar.FeatureSet{}, Newf(InvalidOrDuplicateFeature,
				"duplicate %s feature: %s conflicts with %s", f.Category, f.Name, existing.Name).
				At(input, part.text, part.offset)
		}
	}
	return features, nil
}
