// Package server implements the webhook-facing HTTP layer: the GitLab
// webhook endpoint, a health check, and a diagnostic review endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mergelens/mergelens/internal/review"
)

// Server hosts the mergelens HTTP endpoints.
type Server struct {
	addr     string
	log      zerolog.Logger
	pipeline *review.Pipeline
	repoPath string
	mux      *http.ServeMux
	server   *http.Server
}

// New creates the HTTP server around a review pipeline.
func New(addr, repoPath string, log zerolog.Logger, pipeline *review.Pipeline) *Server {
	s := &Server{
		addr:     addr,
		log:      log,
		pipeline: pipeline,
		repoPath: repoPath,
	}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.requestID(s.logging(s.mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /gitlab", s.handleWebhook)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /test", s.handleTest)
}

// ListenAndServe starts the HTTP server and blocks until it exits.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.addr).Msg("starting mergelens server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing to recover here.
		return
	}
}

// writeDetail writes the error shape used on all failure paths.
func writeDetail(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"detail": fmt.Sprintf(format, args...)})
}
