package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/teranos/syntaxis/errors"
)

// ServerState is the lifecycle state of a Server
type ServerState int32

const (
	ServerStateStopped ServerState = iota
	ServerStateRunning
	ServerStateDraining
)

// getState returns the current server state
func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Debugw("Server state changed", "new_state", stateString(newState))
}

// stateString returns human-readable state name
func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled or
// Stop is called.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or Stop is called
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.setState(ServerStateRunning)
	s.logger.Infow("HTTP server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				s.logger.Warnw("Shutdown error", "error", err)
			}
		case <-s.ctx.Done():
		}
	}()

	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "http server failed")
}

// Stop drains in-flight requests and closes open WebSocket sessions
func (s *Server) Stop() error {
	if !s.state.CompareAndSwap(int32(ServerStateRunning), int32(ServerStateDraining)) {
		return nil
	}
	s.logger.Infow("Initiating server shutdown")

	// ends WebSocket sessions and the shutdown watcher
	s.cancel()

	var err error
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(shutdownCtx)
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server stopped")
	if err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

// Wait blocks until background goroutines have exited
func (s *Server) Wait() {
	s.wg.Wait()
}
