package server

import (
	"net/http"

	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/storage"
)

// HandleTemplates lists (GET) or saves (POST) templates
func (s *Server) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.templates.List(r.Context())
		if err != nil {
			writeAPIError(w, r, s.logger, err, "failed to list templates")
			return
		}
		if list == nil {
			list = []*storage.SavedTemplate{}
		}
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var req SaveTemplateRequest
		if err := readJSON(w, r, &req); err != nil {
			return
		}
		saved, err := s.templates.Save(r.Context(), req.Template, req.Description)
		if err != nil {
			writeAPIError(w, r, s.logger, err, "failed to save template")
			return
		}
		logger.LoggerFromContext(r.Context(), s.logger).Infow("Template saved",
			logger.FieldTemplateID, saved.ID,
			logger.FieldTemplate, saved.Template)
		writeJSON(w, http.StatusCreated, saved)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleTemplate returns (GET) or deletes (DELETE) one saved template
func (s *Server) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.templates.Get(r.Context(), id)
		if err != nil {
			writeAPIError(w, r, s.logger, err, "failed to load template")
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		deleted, err := s.templates.Delete(r.Context(), id)
		if err != nil {
			writeAPIError(w, r, s.logger, err, "failed to delete template")
			return
		}
		if !deleted {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleTemplateGenerate generates from a saved template. The body is
// optional and may carry a count.
func (s *Server) HandleTemplateGenerate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			return
		}
	}

	t, err := s.templates.Get(r.Context(), id)
	if err != nil {
		writeAPIError(w, r, s.logger, err, "failed to load template")
		return
	}

	resp, err := s.generate(r.Context(), t.Template, req.Count)
	if err != nil {
		writeAPIError(w, r, s.logger, err, "generation failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
