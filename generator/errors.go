package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
)

// ErrorKind categorizes generation failures
type ErrorKind string

const (
	NoMatchingWord ErrorKind = "NoMatchingWord"
)

// GenerationError reports a token the lexicon could not satisfy. It wraps
// errors.ErrNotFound.
type GenerationError struct {
	Kind              ErrorKind           `json:"kind"`
	LexicalType       grammar.LexicalType `json:"lexical"`
	RequestedFeatures map[string]string   `json:"features"`
	Group             int                 `json:"group"`
	Token             int                 `json:"token"`
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("no %s in the lexicon matches %s", e.LexicalType, formatFeatures(e.RequestedFeatures))
}

// Unwrap ties every generation error to ErrNotFound for errors.Is
func (e *GenerationError) Unwrap() error {
	return errors.ErrNotFound
}

// AsGenerationError extracts a *GenerationError from err's chain
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func formatFeatures(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
