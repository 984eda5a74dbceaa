// internal/controller/auth_controller.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/unclebandit/mailer-backend/internal/service"
)

type AuthController struct {
	Auth   *service.AuthService
	Logger *slog.Logger
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	res, err := c.Auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	res, err := c.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	me, err := c.Auth.Me(r.Context(), userID)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}
