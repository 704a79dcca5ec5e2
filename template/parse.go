package template

import (
	"strings"
)

// Parse dispatches on the first non-space character: '[' selects the
// bracket syntax and '(' the grouped syntax. Anything else is rejected
// before any extraction.
func Parse(text string) (*AST, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, NewParseError(EmptyTemplate, "template is empty")
	}

	switch trimmed[0] {
	case '[':
		return ParseBracket(text)
	case '(':
		return ParseGrouped(text)
	default:
		lead := []rune(trimmed)[0]
		offset := strings.Index(text, string(lead))
		return nil, Newf(InvalidTemplateLeadCharacter,
			"template must start with '[' or '(', found %q", lead).
			At(text, string(lead), offset).
			WithSuggestion("[noun:nom:masc:sg]", "(article noun)@{nom:masc:sg}")
	}
}

// DetectVersion reports which syntax Parse would choose, or 0.
func DetectVersion(text string) SyntaxVersion {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	switch trimmed[0] {
	case '[':
		return SyntaxBracket
	case '(':
		return SyntaxGrouped
	}
	return 0
}

// validateReferences checks every reference against the finished group
// list. A reference must name an existing group strictly earlier than the
// referring one, which keeps resolution finite.
func validateReferences(input string, groups []Group, spans []span) error {
	for i, g := range groups {
		if !g.HasReference() {
			continue
		}
		ref := g.References
		sp := spans[i]
		if ref < 1 || ref > len(groups) {
			return Newf(NonExistentReference,
				"group %d references $%d but the template has %d groups", g.ReferenceID, ref, len(groups)).
				At(input, sp.text, sp.offset).
				WithContext("group", g.ReferenceID)
		}
		if ref >= g.ReferenceID {
			return Newf(ForwardOrSelfReference,
				"group %d references $%d; references must point to an earlier group", g.ReferenceID, ref).
				At(input, sp.text, sp.offset).
				WithContext("group", g.ReferenceID)
		}
	}
	return nil
}

// span is a matched region of the input
type span struct {
	text   string
	offset int
}
