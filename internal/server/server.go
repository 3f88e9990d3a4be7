// Package server exposes spaces, artifacts, agents and agent interactions
// as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thinkspaces/thinkspaces"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server is the HTTP transport over a Store and an Executor.
type Server struct {
	store    thinkspaces.Store
	executor *thinkspaces.Executor
	logger   *slog.Logger
}

// New returns a Server reading and writing through store and running
// interactions through executor.
func New(store thinkspaces.Store, executor *thinkspaces.Executor, opts ...Option) *Server {
	s := &Server{store: store, executor: executor, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /providers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"providers": s.executor.Registry().Available()})
	})

	// Spaces
	mux.HandleFunc("GET /spaces", s.handleListSpaces)
	mux.HandleFunc("POST /spaces", s.handleCreateSpace)
	mux.HandleFunc("GET /spaces/{id}", s.handleGetSpace)
	mux.HandleFunc("PUT /spaces/{id}", s.handleUpdateSpace)
	mux.HandleFunc("DELETE /spaces/{id}", s.handleDeleteSpace)

	// Artifacts
	mux.HandleFunc("GET /artifacts", s.handleListArtifacts)
	mux.HandleFunc("POST /artifacts", s.handleCreateArtifact)
	mux.HandleFunc("GET /artifacts/search", s.handleSearchArtifacts)
	mux.HandleFunc("GET /artifacts/{id}", s.handleGetArtifact)
	mux.HandleFunc("PUT /artifacts/{id}", s.handleUpdateArtifact)
	mux.HandleFunc("DELETE /artifacts/{id}", s.handleDeleteArtifact)

	// Agents
	mux.HandleFunc("GET /agents", s.handleListAgents)
	mux.HandleFunc("POST /agents", s.handleCreateAgent)
	mux.HandleFunc("GET /agents/{id}", s.handleGetAgent)
	mux.HandleFunc("PUT /agents/{id}", s.handleUpdateAgent)
	mux.HandleFunc("DELETE /agents/{id}", s.handleDeleteAgent)
	mux.HandleFunc("POST /agents/{id}/interact", s.handleInteract)
	mux.HandleFunc("GET /agents/{id}/interactions", s.handleListInteractions)
	mux.HandleFunc("POST /agents/{id}/summarize", s.handleSummarize)

	return s.logRequests(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":          "Think Spaces API",
		"health_url":    "/health",
		"providers_url": "/providers",
		"spaces_url":    "/spaces",
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

// writeError maps err onto a status code and a {"detail": ...} body.
// missing is the detail used for thinkspaces.ErrNotFound.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, missing string) {
	switch {
	case errors.Is(err, thinkspaces.ErrNotFound):
		writeDetail(w, http.StatusNotFound, missing)
	case errors.Is(err, thinkspaces.ErrConflict):
		writeDetail(w, http.StatusConflict, "Space name already exists")
	case thinkspaces.IsClientError(err):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &thinkspaces.ErrInvalidRequest{Message: "request body is empty"}
		}
		return &thinkspaces.ErrInvalidRequest{Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// queryLimit parses an optional positive limit capped at ceiling.
func queryLimit(r *http.Request, def, ceiling int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > ceiling {
		return 0, &thinkspaces.ErrInvalidRequest{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", ceiling),
		}
	}
	return n, nil
}
