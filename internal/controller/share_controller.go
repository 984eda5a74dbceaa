// internal/controller/share_controller.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailer-backend/internal/service"
)

type ShareController struct {
	Shares *service.ShareService
	Logger *slog.Logger
}

func (c *ShareController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var in service.ShareInput
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	shares, err := c.Shares.Share(r.Context(), userID, in)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "shares": shares})
}

func (c *ShareController) ListForResource(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	resourceID, err := pathID(r, "resourceId")
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	shares, err := c.Shares.ListForResource(r.Context(), userID, chi.URLParam(r, "resourceType"), resourceID)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

func (c *ShareController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	shareID, err := pathID(r, "shareId")
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.Shares.Delete(r.Context(), userID, shareID); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}

func (c *ShareController) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	out, err := c.Shares.SharedWithMe(r.Context(), userID)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
