package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/syntaxis/logger"
)

// Handler returns the HTTP handler with every route registered
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	mux.HandleFunc("/api/v1/features", s.corsMiddleware(s.HandleFeatures))                                         // Vocabulary (GET)
	mux.HandleFunc("/api/v1/generate", s.corsMiddleware(s.rateLimit(s.HandleGenerate)))                            // Generate from a template (POST)
	mux.HandleFunc("/api/v1/templates", s.corsMiddleware(s.HandleTemplates))                                       // List/save templates (GET/POST)
	mux.HandleFunc("/api/v1/templates/{id}", s.corsMiddleware(s.HandleTemplate))                                   // Get/delete one template (GET/DELETE)
	mux.HandleFunc("/api/v1/templates/{id}/generate", s.corsMiddleware(s.rateLimit(s.HandleTemplateGenerate)))     // Generate from a saved template (POST)
	mux.HandleFunc("/api/v1/lexicon/stats", s.corsMiddleware(s.HandleLexiconStats))                                // Lexicon counts (GET)
	mux.HandleFunc("/ws/generate", s.HandleGenerateWebSocket)                                                      // Streaming generation

	return s.requestMiddleware(mux)
}

// checkOrigin validates an Origin header against the configured allowed
// origins. Prefix matching allows any port.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Direct clients (curl, tests) send no origin
	if origin == "" {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, allowed := range s.allowedOrigins {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}

// corsMiddleware adds CORS headers to HTTP responses using configured allowed origins
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// rateLimit rejects requests beyond the configured token bucket with 429
func (s *Server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter := s.getLimiter(); limiter != nil && !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the hijacker for WebSocket upgrades
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestMiddleware assigns every request an ID and logs it on completion
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		start := time.Now()

		if strings.HasPrefix(r.URL.Path, "/ws/") {
			// the upgrader needs the raw writer
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Debugw("Request served",
			logger.FieldRequestID, requestID,
			logger.FieldMethod, r.Method,
			logger.FieldPath, r.URL.Path,
			logger.FieldStatus, rec.status,
			logger.FieldDurationMS, time.Since(start).Milliseconds())
	})
}
