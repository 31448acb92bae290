package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/teamflow/sprintbot/internal/logging"
)

// Server wraps the HTTP server hosting the REST API.
type Server struct {
	httpServer *http.Server
}

// NewServer binds the router to a listen address.
func NewServer(host string, port int, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves in a goroutine and returns immediately.
func (s *Server) Start() {
	go func() {
		logging.WithComponent("api").Info("API server listening",
			slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.WithComponent("api").Error("API server failed", slog.Any("error", err))
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
