package server

import (
	"context"
	"net/http"

	"github.com/teranos/syntaxis/db"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
	"github.com/teranos/syntaxis/version"
)

// HandleHealth reports version, schema and lexicon size
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	versionInfo := version.Get()

	health := map[string]interface{}{
		"status":     "ok",
		"version":    versionInfo.Version,
		"commit":     versionInfo.CommitHash,
		"build_time": versionInfo.BuildTime,
		"release":    versionInfo.IsRelease(),
		"clients":    int(s.wsClients.Load()),
		"state":      stateString(s.getState()),
	}

	if schema, err := db.SchemaVersion(s.db); err == nil {
		health["schema_version"] = schema
	}

	stats, err := s.lexicon.CountWords(r.Context())
	if err != nil {
		s.logger.Warnw("Health check could not count lexicon", "error", err)
		health["status"] = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	health["lemmas"] = stats.Total

	writeJSON(w, http.StatusOK, health)
}

// HandleFeatures serves the template vocabulary
func (s *Server) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	resp := FeaturesResponse{
		Features:  make(map[string][]string),
		Shapes:    make(map[string]ShapeResponse),
		Wildcards: []string{grammar.WildcardGender, grammar.WildcardNumber, grammar.WildcardPerson},
	}
	for c, names := range grammar.FeatureVocabulary() {
		resp.Features[string(c)] = names
	}
	for _, lt := range grammar.LexicalTypes {
		resp.LexicalTypes = append(resp.LexicalTypes, string(lt))
		shape := grammar.ShapeOf(lt)
		resp.Shapes[string(lt)] = ShapeResponse{
			Required: categoryNames(shape.Required),
			Optional: categoryNames(shape.Optional),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func categoryNames(cs []grammar.Category) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return names
}

// HandleGenerate generates words for the template in the request body
func (s *Server) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req GenerateRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	resp, err := s.generate(r.Context(), req.Template, req.Count)
	if err != nil {
		writeAPIError(w, r, s.logger, err, "generation failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleLexiconStats reports lemma counts per lexical type
func (s *Server) HandleLexiconStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	stats, err := s.lexicon.CountWords(r.Context())
	if err != nil {
		writeAPIError(w, r, s.logger, err, "failed to count lexicon")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// generate runs one or count generations. A single result is returned as
// a GenerateResponse, several as a BatchResponse.
func (s *Server) generate(ctx context.Context, text string, count int) (interface{}, error) {
	if count < 0 {
		return nil, errors.NewInvalidRequestError("count must not be negative, got %d", count)
	}
	if max := s.getMaxCount(); count > max {
		return nil, errors.NewInvalidRequestError("count %d exceeds the limit of %d", count, max)
	}

	if count <= 1 {
		result, err := s.generator.Generate(ctx, text)
		if err != nil {
			return nil, err
		}
		return newGenerateResponse(result), nil
	}

	results, err := s.generator.GenerateN(ctx, text, count)
	if err != nil {
		return nil, err
	}
	batch := &BatchResponse{Template: text, Results: make([]*GenerateResponse, len(results))}
	for i, res := range results {
		batch.Results[i] = newGenerateResponse(res)
	}
	return batch, nil
}
