package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/protech-rv/protech/internal/registry"
	"github.com/protech-rv/protech/internal/turn"
)

type Server struct {
	router   *chi.Mux
	port     int
	apiToken string
	proc     *turn.Processor
	registry *registry.Registry
}

func NewServer(port int, apiToken string, proc *turn.Processor, reg *registry.Registry) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		apiToken: apiToken,
		proc:     proc,
		registry: reg,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/protech/status", s.status)

	router.Route("/api/v1/cases", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/{caseID}/turns", s.runTurn)
		r.Get("/{caseID}", s.getCase)
		r.Get("/{caseID}/context", s.getContext)
		r.Delete("/{caseID}", s.clearCase)
	})

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
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "protech",
		"status": "ready",
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
