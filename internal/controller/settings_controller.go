// internal/controller/settings_controller.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/unclebandit/mailer-backend/internal/service"
)

type SettingsController struct {
	Settings *service.SettingsService
	Logger   *slog.Logger
}

func (c *SettingsController) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := c.Settings.Get(r.Context())
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (c *SettingsController) Update(w http.ResponseWriter, r *http.Request) {
	var in service.Settings
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.Settings.Update(r.Context(), in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}
