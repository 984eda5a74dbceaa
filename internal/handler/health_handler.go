package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *slog.Logger
}

// NewHealthHandler takes a nil store when there is nothing to probe.
func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.PingContext(r.Context()); err != nil {
			h.logger.Warn("readiness probe failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
