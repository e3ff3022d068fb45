package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ws-backend/runtime"
)

// Server is the HTTP front door, run as a supervised worker.
// Connections are served on every path except /healthz.
type Server struct {
	http            *http.Server
	registry        *runtime.Registry
	shutdownTimeout time.Duration
	log             *slog.Logger
}

func NewServer(
	addr string,
	ws *WSHandler,
	registry *runtime.Registry,
	shutdownTimeout time.Duration,
	log *slog.Logger,
) *Server {
	s := &Server{registry: registry, shutdownTimeout: shutdownTimeout, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("/", ws)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type healthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	stats := s.registry.Stats()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:      "ok",
		Connections: stats.Connections,
		Rooms:       stats.Rooms,
	}); err != nil {
		s.log.Debug("Unable to write health response", "error", err)
	}
}

// Run listens until ctx is canceled, then stops accepting, closes every live
// connection and returns nil. A listen failure is returned so the supervisor
// can retry.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen on %s: %w", s.http.Addr, err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("HTTP shutdown incomplete", "error", err)
	}
	// hijacked connections are not tracked by http.Server
	s.CloseConnections()
	return nil
}

func (s *Server) CloseConnections() {
	subscribers := s.registry.Connections()
	for _, sub := range subscribers {
		sub.Sink.Close()
	}
	s.log.Info("Closed connections", "count", len(subscribers))
}
