// Package api is the control-plane HTTP surface: health and status
// probes, read access to upstream conversations and local mood trends,
// and operational actions like batch republishing.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/solacelabs/solace/internal/elevenlabs"
	"github.com/solacelabs/solace/internal/knowledge"
	"github.com/solacelabs/solace/internal/observability"
	"github.com/solacelabs/solace/internal/store"
)

// Ledger is the read side of the completion ledger the API reports on.
type Ledger interface {
	Contains(id string) bool
	Len() int
}

type Server struct {
	router *chi.Mux
	port   int

	source      *elevenlabs.Client
	publisher   *knowledge.Publisher
	ledger      Ledger
	index       *store.Store // optional
	agentID     string
	pageSize    int
	profilesDir string
}

func NewServer(
	port int,
	source *elevenlabs.Client,
	publisher *knowledge.Publisher,
	led Ledger,
	index *store.Store,
	agentID string,
	pageSize int,
	profilesDir string,
) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:      router,
		port:        port,
		source:      source,
		publisher:   publisher,
		ledger:      led,
		index:       index,
		agentID:     agentID,
		pageSize:    pageSize,
		profilesDir: profilesDir,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/status", s.status)
	router.Get("/api/v1/conversations", s.listConversations)
	router.Get("/api/v1/conversations/{id}", s.getConversation)
	router.Delete("/api/v1/conversations/{id}", s.deleteConversation)
	router.Get("/api/v1/mood-trends", s.moodTrends)
	router.Post("/api/v1/republish", s.republish)
	router.Handle("/metrics", observability.MetricsHandler())

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "solace",
		"status":    "ok",
		"agent_id":  s.agentID,
		"processed": s.ledger.Len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
