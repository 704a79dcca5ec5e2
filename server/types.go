package server

import (
	"github.com/teranos/syntaxis/generator"
	"github.com/teranos/syntaxis/storage"
)

// maxRequestBody bounds JSON request bodies
const maxRequestBody = 64 * 1024

// GenerateRequest is the body of POST /api/v1/generate and of every
// /ws/generate message. Count defaults to 1.
type GenerateRequest struct {
	Template string `json:"template"`
	Count    int    `json:"count,omitempty"`
}

// GenerateResponse is one generated result
type GenerateResponse struct {
	Template      string                    `json:"template"`
	SyntaxVersion string                    `json:"syntax_version"`
	Lexicals      []*storage.Word           `json:"lexicals"`
	Overrides     []generator.OverrideEvent `json:"overrides"`
}

// BatchResponse is returned when more than one result was requested
type BatchResponse struct {
	Template string              `json:"template"`
	Results  []*GenerateResponse `json:"results"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error       string            `json:"error"`
	Kind        string            `json:"kind,omitempty"`
	Fragment    string            `json:"fragment,omitempty"`
	Candidates  []string          `json:"candidates,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	Lexical     string            `json:"lexical,omitempty"`
	Features    map[string]string `json:"features,omitempty"`
}

// SaveTemplateRequest is the body of POST /api/v1/templates
type SaveTemplateRequest struct {
	Template    string `json:"template"`
	Description string `json:"description,omitempty"`
}

// ShapeResponse lists the categories a lexical type takes in bracket templates
type ShapeResponse struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// FeaturesResponse describes the template vocabulary
type FeaturesResponse struct {
	LexicalTypes []string                 `json:"lexical_types"`
	Features     map[string][]string      `json:"features"`
	Shapes       map[string]ShapeResponse `json:"shapes"`
	Wildcards    []string                 `json:"wildcards"`
}

// newGenerateResponse converts a generator result for the wire
func newGenerateResponse(r *generator.Result) *GenerateResponse {
	overrides := r.Overrides
	if overrides == nil {
		overrides = []generator.OverrideEvent{}
	}
	return &GenerateResponse{
		Template:      r.Template,
		SyntaxVersion: r.AST.Version.String(),
		Lexicals:      r.Words(),
		Overrides:     overrides,
	}
}
