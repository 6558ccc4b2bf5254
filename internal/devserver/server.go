// Package devserver is a loopback orchestrator for local development and
// integration tests. It speaks the same REST and websocket surface as the
// real execution service: workflow CRUD, execute, run-status polling, and
// workflow.status telemetry frames. Runs are simulated by walking the node
// order; nothing is actually executed.
package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/domain"
)

// Server is the loopback orchestrator.
type Server struct {
	logger    *slog.Logger
	store     *MemStore
	hub       *hub
	stepDelay time.Duration
	upgrader  websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStepDelay sets the simulated execution time per node. Tests set it
// to zero.
func WithStepDelay(d time.Duration) Option {
	return func(s *Server) {
		s.stepDelay = d
	}
}

// WithStore seeds the server with an existing store.
func WithStore(store *MemStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		logger:    logging.NewNop(),
		store:     NewMemStore(),
		stepDelay: 150 * time.Millisecond,
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger)
	return s
}

// Store exposes the backing store for seeding.
func (s *Server) Store() *MemStore {
	return s.store
}

// Handler returns the HTTP surface: REST under /api, the websocket at /ws,
// and Prometheus metrics at /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/flows", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleSave)
		r.Get("/{id}", s.handleGet)
		r.Delete("/{id}", s.handleDelete)
		r.Post("/{id}/execute", s.handleExecute)
	})
	r.Get("/api/runs/{id}", s.handleRunStatus)
	r.Get("/ws", s.handleWS)
	r.Handle("/metrics", promhttp.Handler())

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	flows, _ := s.store.List(r.Context())
	writeJSON(w, http.StatusOK, flows)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	flow, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			writeError(w, http.StatusNotFound, "workflow not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var flow domain.Workflow
	if err := json.NewDecoder(r.Body).Decode(&flow); err != nil {
		writeError(w, http.StatusBadRequest, "invalid workflow body")
		return
	}
	if flow.ID == "" {
		writeError(w, http.StatusBadRequest, "workflow id is required")
		return
	}
	if err := s.store.Save(r.Context(), flow); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	_ = s.store.Delete(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	flow, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	var input map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&input) // empty body is fine
	}

	runID := s.startRun(flow, input)
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := s.store.run(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := s.hub.add(conn)
	s.logger.Info("client connected", "remote", conn.RemoteAddr().String())
	go s.hub.serve(c)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
