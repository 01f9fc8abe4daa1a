// ABOUTME: Health endpoint reporting database reachability and provider
// ABOUTME: Returns 503 when the database ping fails
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db       Pinger
	provider string
	logger   *zap.Logger
}

// NewHealthHandler creates a health handler. provider names the configured chat provider.
func NewHealthHandler(db Pinger, provider string, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{db: db, provider: provider, logger: logger}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"api": "ok", "llm": h.provider}
	status := "healthy"
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		checks["database"] = "unreachable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	JSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
