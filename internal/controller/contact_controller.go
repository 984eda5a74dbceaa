// internal/controller/contact_controller.go
package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/service"
)

type ContactController struct {
	Contacts *service.ContactService
	Logger   *slog.Logger
}

func (c *ContactController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	contacts, err := c.Contacts.List(r.Context(), userID, model.ContactFilter{
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (c *ContactController) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	contact, err := c.Contacts.Get(r.Context(), userID, id)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (c *ContactController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var in service.ContactInput
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	contact, err := c.Contacts.Create(r.Context(), userID, in)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (c *ContactController) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var in service.ContactInput
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	contact, err := c.Contacts.Update(r.Context(), userID, id, in)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (c *ContactController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.Contacts.Delete(r.Context(), userID, id); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}
