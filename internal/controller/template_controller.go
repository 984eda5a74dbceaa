// internal/controller/template_controller.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/unclebandit/mailer-backend/internal/service"
)

type TemplateController struct {
	Templates *service.TemplateService
	Logger    *slog.Logger
}

func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	templates, err := c.Templates.List(r.Context(), userID)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	tpl, err := c.Templates.Get(r.Context(), userID, id)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var in service.TemplateInput
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	tpl, err := c.Templates.Create(r.Context(), userID, in)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var in service.TemplateInput
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	tpl, err := c.Templates.Update(r.Context(), userID, id, in)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.Templates.Delete(r.Context(), userID, id); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}
