// internal/server/server.go

// Package server is the HTTP boundary: it decodes ask requests, invokes the
// service, and encodes answers. Data-quality problems never surface as HTTP
// errors; only malformed requests do.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bi-agent/internal/common/logger"
	"bi-agent/internal/service"
)

// Asker answers one business question.
type Asker interface {
	Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error)
}

type Server struct {
	svc        Asker
	logger     logger.Logger
	httpServer *http.Server
}

func New(port int, readTimeout time.Duration, svc Asker, log logger.Logger) *Server {
	s := &Server{
		svc:    svc,
		logger: log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     s.Routes(),
		ReadTimeout: readTimeout,
	}
	return s
}

// Routes builds the handler tree. Exposed separately so tests can drive the
// mux without binding a port.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req service.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	resp, err := s.svc.Ask(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuestion) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("ask failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
