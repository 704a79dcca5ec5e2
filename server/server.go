// Package server exposes the generator over HTTP and WebSocket.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/syntaxis/am"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/generator"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/storage"
)

// Server serves generation, saved templates and vocabulary
type Server struct {
	db        *sql.DB
	lexicon   *storage.LexiconStore
	templates *storage.TemplateStore
	generator *generator.Generator
	logger    *zap.SugaredLogger

	mu             sync.RWMutex
	allowedOrigins []string
	maxCount       int
	limiter        *rate.Limiter // nil when rate limiting is disabled

	upgrader   websocket.Upgrader
	wsClients  atomic.Int32
	httpServer *http.Server
	state      atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server over an already migrated database
func New(db *sql.DB, cfg *am.Config) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	serverLogger := logger.ComponentLogger("server")
	lexicon := storage.NewLexiconStore(db, logger.ComponentLogger("lexicon"))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		db:        db,
		lexicon:   lexicon,
		templates: storage.NewTemplateStore(db),
		generator: generator.New(lexicon,
			generator.WithLogger(logger.ComponentLogger("generator")),
			generator.WithOverrideLogging(cfg.Generator.LogOverrides)),
		logger: serverLogger,
		ctx:    ctx,
		cancel: cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     s.checkOrigin,
	}
	s.ApplyConfig(cfg)
	s.setState(ServerStateStopped)

	return s, nil
}

// ApplyConfig updates the settings that may change while serving: allowed
// origins, the generate rate limit and the batch limit.
func (s *Server) ApplyConfig(cfg *am.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allowedOrigins = cfg.GetServerAllowedOrigins()
	s.maxCount = cfg.GetMaxCount()

	switch {
	case cfg.Server.RateLimit <= 0:
		s.limiter = nil
	case s.limiter == nil:
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	default:
		s.limiter.SetLimit(rate.Limit(cfg.Server.RateLimit))
		s.limiter.SetBurst(cfg.Server.RateBurst)
	}

	s.logger.Debugw("Server config applied",
		"allowed_origins", len(s.allowedOrigins),
		"rate_limit", cfg.Server.RateLimit,
		"rate_burst", cfg.Server.RateBurst,
		"max_count", s.maxCount)
}

// Lexicon returns the lexicon store the server generates from
func (s *Server) Lexicon() *storage.LexiconStore {
	return s.lexicon
}

func (s *Server) getMaxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxCount
}

func (s *Server) getLimiter() *rate.Limiter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limiter
}
