// internal/controller/list_controller.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/unclebandit/mailer-backend/internal/service"
)

type ListController struct {
	Lists  *service.ListService
	Logger *slog.Logger
}

func (c *ListController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	lists, err := c.Lists.List(r.Context(), userID)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (c *ListController) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	list, err := c.Lists.Get(r.Context(), userID, id)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (c *ListController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var in service.ListInput
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	list, err := c.Lists.Create(r.Context(), userID, in)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (c *ListController) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var in service.ListInput
	if err := decode(r, &in); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	list, err := c.Lists.Update(r.Context(), userID, id, in)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (c *ListController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.Lists.Delete(r.Context(), userID, id); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}

func (c *ListController) AddContact(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var body struct {
		ContactID int `json:"contactId"`
	}
	if err := decode(r, &body); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.Lists.AddContact(r.Context(), userID, id, body.ContactID); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}

func (c *ListController) RemoveContact(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	contactID, err := pathID(r, "contactId")
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.Lists.RemoveContact(r.Context(), userID, id, contactID); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}
