// Package api exposes published world views and the command interface over
// HTTP and websockets.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pthm-cable/tidepool/game"
)

// Engine is the part of the runner the API uses.
type Engine interface {
	// View returns the latest published view, nil before the first publish.
	View() *game.View
	// Submit queues a command without blocking.
	Submit(cmd game.Command) error
}

// RouterConfig contains the router dependencies.
type RouterConfig struct {
	Engine Engine

	// Hub streams views to websocket clients. Nil disables /ws.
	Hub *Hub

	// CommandLimiter throttles POST /api/commands per client IP.
	// Nil creates one from CommandRate and CommandBurst.
	CommandLimiter *IPRateLimiter
	CommandRate    float64
	CommandBurst   int

	// CORSOrigins lists allowed origins. Nil allows any origin.
	CORSOrigins []string

	// DisableLogging turns off the request logger (tests).
	DisableLogging bool
}

type routerHandlers struct {
	engine Engine
}

// NewRouter builds the HTTP router. It starts no goroutines and opens no
// listeners, so it can be served by httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	limiter := cfg.CommandLimiter
	if limiter == nil {
		limiter = NewIPRateLimiter(cfg.CommandRate, cfg.CommandBurst)
	}

	h := &routerHandlers{engine: cfg.Engine}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/world", h.handleGetWorld)
		r.Get("/tiles", h.handleGetTiles)
		r.Get("/bodies", h.handleGetBodies)
		r.Get("/bodies/{id}", h.handleGetBody)
		r.Get("/history", h.handleGetHistory)

		r.With(limiter.Middleware).Post("/commands", h.handlePostCommand)
	})

	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}

	return r
}
