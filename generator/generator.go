// Package generator turns parsed templates into words. It resolves every
// token's final feature set (group features, inherited references, direct
// overrides) and asks a Lexicon for one random matching word per token.
package generator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/storage"
	"github.com/teranos/syntaxis/template"
)

// Lexicon supplies words. RandomWord returns an error wrapping
// errors.ErrNotFound when no word of that lexical type satisfies every
// constraint; among matches the choice is uniformly random.
type Lexicon interface {
	RandomWord(ctx context.Context, lexical string, features map[string]string) (*storage.Word, error)
}

// Selection is one generated word together with the request that produced it
type Selection struct {
	Group       int                 `json:"group"`
	Token       int                 `json:"token"`
	LexicalType grammar.LexicalType `json:"lexical"`
	Features    grammar.FeatureSet  `json:"features"`
	Word        *storage.Word       `json:"word"`
}

// Result is the output of one generation
type Result struct {
	Template   string          `json:"template"`
	AST        *template.AST   `json:"-"`
	Selections []Selection     `json:"selections"`
	Overrides  []OverrideEvent `json:"overrides,omitempty"`
}

// Words returns the generated words in template order
func (r *Result) Words() []*storage.Word {
	words := make([]*storage.Word, len(r.Selections))
	for i, s := range r.Selections {
		words[i] = s.Word
	}
	return words
}

// Generator is safe for concurrent use when its Lexicon is.
type Generator struct {
	lexicon      Lexicon
	logger       *zap.SugaredLogger
	logOverrides bool
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the generator's logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithOverrideLogging logs every override event at debug level
func WithOverrideLogging(enabled bool) Option {
	return func(g *Generator) { g.logOverrides = enabled }
}

// New creates a Generator backed by lexicon
func New(lexicon Lexicon, opts ...Option) *Generator {
	g := &Generator{
		lexicon: lexicon,
		logger:  logger.ComponentLogger("generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate parses text and generates one word per token
func (g *Generator) Generate(ctx context.Context, text string) (*Result, error) {
	ast, err := template.Parse(text)
	if err != nil {
		return nil, err
	}
	result, err := g.GenerateAST(ctx, ast)
	if err != nil {
		return nil, err
	}
	result.Template = text
	return result, nil
}

// GenerateN parses text once and generates count independent results
func (g *Generator) GenerateN(ctx context.Context, text string, count int) ([]*Result, error) {
	if count < 1 {
		return nil, errors.NewInvalidRequestError("count must be at least 1, got %d", count)
	}
	ast, err := template.Parse(text)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "generation cancelled")
		}
		r, err := g.GenerateAST(ctx, ast)
		if err != nil {
			return nil, err
		}
		r.Template = text
		results = append(results, r)
	}
	return results, nil
}

// GenerateAST generates one word per token of a parsed template. The
// first token the lexicon cannot satisfy aborts generation with a
// *GenerationError; no partial result is returned.
func (g *Generator) GenerateAST(ctx context.Context, ast *template.AST) (*Result, error) {
	start := time.Now()
	log := logger.LoggerFromContext(ctx, g.logger)

	result := &Result{
		AST:        ast,
		Selections: make([]Selection, 0, ast.TokenCount()),
	}

	for gi, group := range ast.Groups {
		base, err := ResolveGroupFeatures(ast, gi)
		if err != nil {
			return nil, err
		}

		for ti, token := range group.Tokens {
			features, events := Merge(base, token.DirectFeatures)
			for _, ev := range events {
				ev.Group = group.ReferenceID
				ev.Token = ti
				ev.LexicalType = token.LexicalType
				result.Overrides = append(result.Overrides, ev)
				if g.logOverrides {
					log.Debugw("Feature override",
						logger.FieldGroup, ev.Group,
						logger.FieldLexical, string(ev.LexicalType),
						logger.FieldCategory, string(ev.Category),
						"old", ev.OldValue,
						"new", ev.NewValue)
				}
			}

			constraints := features.LookupMap()
			word, err := g.lexicon.RandomWord(ctx, string(token.LexicalType), constraints)
			if err != nil {
				if errors.IsNotFoundError(err) {
					genErr := &GenerationError{
						Kind:              NoMatchingWord,
						LexicalType:       token.LexicalType,
						RequestedFeatures: constraints,
						Group:             group.ReferenceID,
						Token:             ti,
					}
					log.Debugw("No matching word",
						logger.FieldLexical, string(token.LexicalType),
						logger.FieldFeatures, constraints)
					return nil, genErr
				}
				return nil, errors.Wrapf(err, "lexicon lookup for %s failed", token.LexicalType)
			}

			result.Selections = append(result.Selections, Selection{
				Group:       group.ReferenceID,
				Token:       ti,
				LexicalType: token.LexicalType,
				Features:    features,
				Word:        word,
			})
		}
	}

	log.Debugw("Generated",
		logger.FieldCount, len(result.Selections),
		logger.FieldSyntax, ast.Version.String(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	return result, nil
}
