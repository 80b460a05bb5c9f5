package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/storefront/storefront-go/internal/lib/logger/sl"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db  Pinger
	log *slog.Logger
}

// NewHealthHandler creates a HealthHandler. db may be nil when the service
// runs without a database, in which case readiness always succeeds.
func NewHealthHandler(db Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// HandleLive handles GET /health requests.
func (h *HealthHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HandleReady handles GET /health/ready requests.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn("readiness check failed", sl.Err(err))
			writeMessage(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
