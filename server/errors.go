package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/generator"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/template"
)

// errorResponse maps an error to its HTTP status and body.
// Parse errors are the caller's fault (400); a token the lexicon cannot
// satisfy means the requested resource does not exist (404).
func errorResponse(err error) (int, ErrorResponse) {
	if pe, ok := template.AsParseError(err); ok {
		return http.StatusBadRequest, ErrorResponse{
			Error:       pe.Error(),
			Kind:        string(pe.Kind),
			Fragment:    pe.Fragment,
			Candidates:  pe.Candidates,
			Suggestions: pe.Suggestions,
		}
	}
	if ge, ok := generator.AsGenerationError(err); ok {
		return http.StatusNotFound, ErrorResponse{
			Error:    ge.Error(),
			Kind:     string(ge.Kind),
			Lexical:  string(ge.LexicalType),
			Features: ge.RequestedFeatures,
		}
	}

	switch {
	case errors.IsInvalidRequestError(err):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.IsNotFoundError(err):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	case errors.IsConflictError(err):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	case errors.Is(err, errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Error: http.StatusText(http.StatusServiceUnavailable)}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}
	}
}

// writeAPIError writes err with the status errorResponse assigns. Server
// side failures are logged with the request's context.
func writeAPIError(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger, err error, context string) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.LoggerFromContext(r.Context(), log).Errorw(context, logger.FieldError, err)
	}
	writeJSON(w, status, body)
}
