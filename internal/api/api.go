// Package api exposes the transformation passes and the preview interpreter
// over HTTP for editor frontends. Handlers are thin: they decode the request,
// call the same library code the CLI uses, and encode the result. All state
// lives in the request body, so the API scales horizontally behind the
// shared Redis or MongoDB cache.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/terraweave/terraweave/pkg/cache"
	apperrors "github.com/terraweave/terraweave/pkg/errors"
	"github.com/terraweave/terraweave/pkg/resolve"
)

// Server holds the shared dependencies for all handlers.
type Server struct {
	logger *log.Logger
	cache  cache.Cache
	tables *resolve.Tables
}

// New creates an API server. A nil cache disables caching and nil tables
// fall back to the built-in defaults.
func New(logger *log.Logger, c cache.Cache, tables *resolve.Tables) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if tables == nil {
		tables = resolve.Default()
	}
	return &Server{logger: logger, cache: c, tables: tables}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/lower", s.handleLower)
		r.Post("/raise", s.handleRaise)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/render", s.handleRender)
	})
	return r
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the wire shape of all error replies.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a JSON reply, using the structured code when
// one is attached.
func writeError(w http.ResponseWriter, status int, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: apperrors.UserMessage(err)})
}
