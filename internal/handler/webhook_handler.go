package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/unclebandit/mailer-backend/internal/controller"
	"github.com/unclebandit/mailer-backend/internal/service"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives provider delivery events. It sits outside the
// JWT-protected routes; authenticity comes from the payload signature.
type WebhookHandler struct {
	Webhooks *service.WebhookService
	Logger   *slog.Logger
}

func (h *WebhookHandler) Mailgun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid webhook payload"})
		return
	}
	res, err := h.Webhooks.HandlePayload(r.Context(), r.Header.Get("Content-Type"), body)
	if err != nil {
		controller.RespondErr(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
