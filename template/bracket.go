package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/teranos/syntaxis/grammar"
)

var bracketPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// ParseBracket parses the bracket syntax. Every [type:f1:f2...] span
// becomes a single-token group whose group features are the span's
// features; text outside the spans is ignored.
func ParseBracket(text string) (*AST, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewParseError(EmptyTemplate, "template is empty")
	}

	matches := bracketPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, Newf(NoTokensFound, "no [type:features] tokens found in %q", text).
			At(text, "", 0)
	}

	groups := make([]Group, 0, len(matches))
	for i, m := range matches {
		body := span{text: text[m[2]:m[3]], offset: m[2]}
		token, features, err := parseBracketToken(text, body)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{
			Tokens:        []Token{token},
			GroupFeatures: features,
			ReferenceID:   i + 1,
		})
	}

	return &AST{Groups: groups, Version: SyntaxBracket}, nil
}

// parseBracketToken resolves one span body. Checks run in a fixed order:
// features on invariable types, arity, name resolution, then category
// membership and duplicates.
func parseBracketToken(input string, body span) (Token, grammar.FeatureSet, error) {
	parts := splitSpans(body, ":")
	head := parts[0]

	lexical, err := grammar.ResolveLexical(head.text)
	if err != nil {
		return Token{}, grammar.FeatureSet{}, fromLookup(err).At(input, head.text, head.offset)
	}

	featureParts := parts[1:]
	shape := grammar.ShapeOf(lexical)

	if lexical.IsInvariable() {
		if len(featureParts) > 0 {
			first := featureParts[0]
			return Token{}, grammar.FeatureSet{}, Newf(UnexpectedFeatures,
				"%s takes no features, got %s", lexical, joinSpans(featureParts)).
				At(input, body.text[first.offset-body.offset:], first.offset)
		}
		return Token{LexicalType: lexical}, grammar.FeatureSet{}, nil
	}

	minArity, maxArity := shape.Arity()
	if len(featureParts) < minArity || len(featureParts) > maxArity {
		return Token{}, grammar.FeatureSet{}, Newf(WrongFeatureArity,
			"%s requires %s (%s), got %d: %s",
			lexical, arityPhrase(minArity, maxArity), describeShape(shape),
			len(featureParts), joinSpans(featureParts)).
			At(input, body.text, body.offset)
	}

	var features grammar.FeatureSet
	for _, part := range featureParts {
		f, err := grammar.ResolveFeature(part.text)
		if err != nil {
			return Token{}, grammar.FeatureSet{}, fromLookup(err).At(input, part.text, part.offset)
		}
		if !shape.Allows(f.Category) {
			return Token{}, grammar.FeatureSet{}, Newf(InvalidOrDuplicateFeature,
				"%s does not take a %s feature: %s", lexical, f.Category, f.Name).
				At(input, part.text, part.offset)
		}
		var ok bool
		if features, ok = features.Add(f); !ok {
			return Token{}, grammar.FeatureSet{}, Newf(InvalidOrDuplicateFeature,
				"duplicate %s feature for %s: %s", f.Category, lexical, f.Name).
				At(input, part.text, part.offset)
		}
	}

	if missing := shape.Missing(features); len(missing) > 0 {
		return Token{}, grammar.FeatureSet{}, Newf(WrongFeatureArity,
			"%s must have %s, missing %s", lexical, describeShape(shape), joinCategories(missing)).
			At(input, body.text, body.offset)
	}

	return Token{LexicalType: lexical}, features, nil
}

func arityPhrase(min, max int) string {
	if min == max {
		return fmt.Sprintf("exactly %d features", min)
	}
	return fmt.Sprintf("%d-%d features", min, max)
}

func describeShape(s grammar.Shape) string {
	desc := joinCategories(s.Required)
	if len(s.Optional) > 0 {
		desc += ", optional " + joinCategories(s.Optional)
	}
	return desc
}

func joinCategories(cs []grammar.Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// splitSpans splits s on any rune in seps, trimming whitespace from each
// part while keeping its byte offset in the original input.
func splitSpans(s span, seps string) []span {
	var parts []span
	start := 0
	for i, r := range s.text {
		if strings.ContainsRune(seps, r) {
			parts = append(parts, trimSpan(s.text[start:i], s.offset+start))
			start = i + len(string(r))
		}
	}
	parts = append(parts, trimSpan(s.text[start:], s.offset+start))
	return parts
}

func trimSpan(text string, offset int) span {
	left := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	return span{text: strings.TrimSpace(text), offset: offset + left}
}

func joinSpans(parts []span) string {
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.text
	}
	return strings.Join(texts, ":")
}
