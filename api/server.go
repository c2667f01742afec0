package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/game"
)

// Server is the HTTP API with its websocket hub. Nothing runs until Start.
type Server struct {
	hub  *Hub
	http *http.Server
}

// NewServer builds the server from the server config section.
func NewServer(engine Engine, cfg config.ServerConfig) *Server {
	hub := NewHub(engine, cfg.AllowedOrigins)
	router := NewRouter(RouterConfig{
		Engine:       engine,
		Hub:          hub,
		CommandRate:  cfg.CommandRate,
		CommandBurst: cfg.CommandBurst,
		CORSOrigins:  cfg.AllowedOrigins,
	})
	return &Server{
		hub: hub,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Publish forwards a published view to metrics and websocket clients.
// Register it with Runner.OnPublish.
func (s *Server) Publish(v *game.View) {
	ObserveView(v)
	s.hub.Publish(v)
}

// Start runs the hub and the listener until ctx is done, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server starting", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
