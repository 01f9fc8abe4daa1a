// ABOUTME: chi router wiring for the coach HTTP service
// ABOUTME: Mounts middleware, identity, JSON routes and the chat WebSocket
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/identity"
	"github.com/harper/nutricoach/internal/logging"
	"go.uber.org/zap"
)

// RouterConfig holds everything NewRouter mounts
type RouterConfig struct {
	Agent          *core.Agent
	Sessions       identity.SessionLookup
	DB             Pinger
	Provider       string
	HistoryLimit   int
	OriginPatterns []string
	Logger         *zap.Logger
}

// NewRouter builds the service router with its middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := logging.OrNop(cfg.Logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(logging.HTTPMiddleware(logger))
	r.Use(chiMiddleware.Recoverer)

	// health is public and skips session lookup
	NewHealthHandler(cfg.DB, cfg.Provider, logger).RegisterHealth(r)

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.Sessions, logger))
		NewHandler(cfg.Agent, cfg.HistoryLimit, logger).RegisterRoutes(r)
		r.Get("/ws/chat", NewChatSocket(cfg.Agent, cfg.OriginPatterns, logger).ServeHTTP)
	})

	return r
}
