package handler

import (
	"log/slog"
	"net/http"

	"github.com/unclebandit/mailer-backend/internal/controller"
	"github.com/unclebandit/mailer-backend/internal/middleware"
	"github.com/unclebandit/mailer-backend/internal/service"
)

type StatsHandler struct {
	Stats  *service.StatsService
	Logger *slog.Logger
}

// Dashboard returns the caller's resource counts and recent campaigns.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Access denied. No token provided."})
		return
	}
	d, err := h.Stats.Dashboard(r.Context(), userID)
	if err != nil {
		controller.RespondErr(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
