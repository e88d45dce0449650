// Package http is the Scenario Catalog Endpoint: one verb-dispatched resource
// over the catalog use cases, plus health and audit trace routes.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sophialabs/scenarioadmin/internal/domain/trace"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/usecases"
)

const maxBodySize = 10 << 20 // 10 MB

// CatalogPath is the catalog resource.
const CatalogPath = "/api/scenarios"

// RateLimit configures per-client limiting of catalog requests. A zero Rate
// disables it.
type RateLimit struct {
	Limiter ports.RateLimiter
	Rate    float64
	Burst   int
}

// Deps are the collaborators of a Server.
type Deps struct {
	List   *usecases.ListScenariosUseCase
	Get    *usecases.GetScenarioUseCase
	Save   *usecases.SaveScenarioUseCase
	Delete *usecases.DeleteScenarioUseCase

	// Tokens, when set, must yield a credential before any catalog
	// operation runs.
	Tokens    ports.TokenSource
	RateLimit RateLimit
	Trace     *trace.RingBuffer
	Logger    ports.Logger
}

// Server is the HTTP server for the scenario catalog.
type Server struct {
	router   *chi.Mux
	listUC   *usecases.ListScenariosUseCase
	getUC    *usecases.GetScenarioUseCase
	saveUC   *usecases.SaveScenarioUseCase
	deleteUC *usecases.DeleteScenarioUseCase
	tokens   ports.TokenSource
	limit    RateLimit
	traceBuf *trace.RingBuffer
	logger   ports.Logger
}

// NewServer creates a Server and builds its router.
func NewServer(deps Deps) *Server {
	s := &Server{
		listUC:   deps.List,
		getUC:    deps.Get,
		saveUC:   deps.Save,
		deleteUC: deps.Delete,
		tokens:   deps.Tokens,
		limit:    deps.RateLimit,
		traceBuf: deps.Trace,
		logger:   deps.Logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.handleHealth)
	r.With(s.rateLimit).Get("/__admin/trace", s.handleGetTrace)

	r.With(s.rateLimit, s.requireCredentials).HandleFunc(CatalogPath, s.handleCatalog)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, http.StatusNotFound, "no_route", "no route for "+r.URL.Path)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	if s.traceBuf == nil {
		writeErrorCode(w, http.StatusNotFound, "trace_disabled", "the audit trace is disabled")
		return
	}

	n := 10
	if lastParam := r.URL.Query().Get("last"); lastParam != "" {
		if parsed, err := strconv.Atoi(lastParam); err == nil && parsed > 0 {
			n = parsed
		}
	}

	var entries []trace.Entry
	if failed, _ := strconv.ParseBool(r.URL.Query().Get("failed")); failed {
		entries = s.traceBuf.LastFailures(n)
	} else {
		entries = s.traceBuf.Last(n)
	}
	if entries == nil {
		entries = []trace.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries)
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
