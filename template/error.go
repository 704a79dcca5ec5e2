package template

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
)

// ErrorKind categorizes parse errors for programmatic handling
type ErrorKind string

const (
	EmptyTemplate                ErrorKind = "EmptyTemplate"
	NoTokensFound                ErrorKind = "NoTokensFound"
	UnknownLexicalType           ErrorKind = "UnknownLexicalType"
	AmbiguousLexicalType         ErrorKind = "AmbiguousLexicalType"
	UnknownFeature               ErrorKind = "UnknownFeature"
	AmbiguousFeature             ErrorKind = "AmbiguousFeature"
	WrongFeatureArity            ErrorKind = "WrongFeatureArity"
	InvalidOrDuplicateFeature    ErrorKind = "InvalidOrDuplicateFeature"
	UnexpectedFeatures           ErrorKind = "UnexpectedFeatures"
	UnbalancedDelimiters         ErrorKind = "UnbalancedDelimiters"
	EmptyGroup                   ErrorKind = "EmptyGroup"
	NonExistentReference         ErrorKind = "NonExistentReference"
	ForwardOrSelfReference       ErrorKind = "ForwardOrSelfReference"
	InvalidTemplateLeadCharacter ErrorKind = "InvalidTemplateLeadCharacter"
)

// ErrorContext selects how a ParseError renders
type ErrorContext int

const (
	ErrorContextPlain    ErrorContext = iota // logs, HTTP responses
	ErrorContextTerminal                     // colored CLI output
)

// ParseError is returned for every template the parsers reject. It wraps
// errors.ErrInvalidRequest.
type ParseError struct {
	Kind        ErrorKind              `json:"kind"`
	Message     string                 `json:"message"`
	Input       string                 `json:"-"`
	Fragment    string                 `json:"fragment,omitempty"` // offending span or token
	Offset      int                    `json:"offset"`             // byte offset of Fragment in Input, -1 if unknown
	Candidates  []string               `json:"candidates,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements error with the plain rendering
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// Unwrap ties every parse error to ErrInvalidRequest for errors.Is
func (e *ParseError) Unwrap() error {
	return errors.ErrInvalidRequest
}

// FormatError generates context-appropriate error message
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminalError()
	}
	return e.formatPlainError()
}

func (e *ParseError) formatPlainError() string {
	msg := e.Message
	if len(e.Candidates) > 0 {
		msg += fmt.Sprintf(" (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Did you mean: %s?", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// formatTerminalError renders the message, the template with a caret
// under the offending fragment, and any suggestions.
func (e *ParseError) formatTerminalError() string {
	var b strings.Builder
	b.WriteString(pterm.Red(e.Message))

	if e.Input != "" && e.Offset >= 0 && e.Offset <= len(e.Input) {
		width := len(e.Fragment)
		if width == 0 {
			width = 1
		}
		b.WriteString("\n\n  ")
		b.WriteString(e.Input)
		b.WriteString("\n  ")
		b.WriteString(strings.Repeat(" ", displayWidth(e.Input[:e.Offset])))
		b.WriteString(pterm.Yellow(strings.Repeat("^", displayWidth(e.Input[e.Offset:min(len(e.Input), e.Offset+width)]))))
	}

	if len(e.Candidates) > 0 {
		b.WriteString(fmt.Sprintf("\n\n%s %s", pterm.LightCyan("Candidates:"), strings.Join(e.Candidates, ", ")))
	}
	if len(e.Suggestions) > 0 {
		b.WriteString(fmt.Sprintf("\n\n%s", pterm.Green("Did you mean:")))
		for _, s := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", s))
		}
	}
	return b.String()
}

func displayWidth(s string) int {
	return len([]rune(s))
}

// NewParseError creates a new ParseError with the given kind and message
func NewParseError(kind ErrorKind, message string) *ParseError {
	return &ParseError{
		Kind:    kind,
		Message: message,
		Offset:  -1,
	}
}

// Newf is NewParseError with a formatted message
func Newf(kind ErrorKind, format string, args ...interface{}) *ParseError {
	return NewParseError(kind, fmt.Sprintf(format, args...))
}

// At records the offending fragment and where it sits in input
func (e *ParseError) At(input, fragment string, offset int) *ParseError {
	e.Input = input
	e.Fragment = fragment
	e.Offset = offset
	return e
}

// WithSuggestion adds a "did you mean" suggestion
func (e *ParseError) WithSuggestion(suggestion ...string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion...)
	return e
}

// WithCandidates records the names an ambiguous token could resolve to
func (e *ParseError) WithCandidates(candidates []string) *ParseError {
	e.Candidates = append(e.Candidates, candidates...)
	return e
}

// WithContext adds debug context metadata
func (e *ParseError) WithContext(key string, value interface{}) *ParseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// fromLookup converts a grammar lookup failure into the matching parse error kind
func fromLookup(err error) *ParseError {
	var le *grammar.LookupError
	if !errors.As(err, &le) {
		return Newf(UnknownFeature, "%v", err)
	}

	var kind ErrorKind
	switch {
	case le.Domain == grammar.DomainLexical && le.Kind == grammar.Ambiguous:
		kind = AmbiguousLexicalType
	case le.Domain == grammar.DomainLexical:
		kind = UnknownLexicalType
	case le.Kind == grammar.Ambiguous:
		kind = AmbiguousFeature
	default:
		kind = UnknownFeature
	}

	pe := Newf(kind, "%s %q", describeLookup(le), le.Token).
		WithCandidates(le.Candidates).
		WithSuggestion(le.Suggestions...)
	pe.Fragment = le.Token
	return pe
}

func describeLookup(le *grammar.LookupError) string {
	if le.Kind == grammar.Ambiguous {
		return fmt.Sprintf("ambiguous %s", le.Domain)
	}
	return fmt.Sprintf("unknown %s", le.Domain)
}

// AsParseError extracts a *ParseError from err's chain
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
