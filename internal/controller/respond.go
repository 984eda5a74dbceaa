// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/middleware"
)

var errUnauthenticated = appErrors.NewUnauthorized("Access denied. No token provided.")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case appErrors.IsNotFound(err):
		return http.StatusNotFound
	case appErrors.IsValidation(err):
		return http.StatusBadRequest
	case appErrors.IsConflict(err):
		return http.StatusConflict
	case appErrors.IsForbidden(err):
		return http.StatusForbidden
	case appErrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// RespondErr writes err as {error} with its mapped status. Unmapped errors are
// logged.
func RespondErr(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondError(w, status, appErrors.Message(err))
}

var success = map[string]bool{"success": true}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.NewValidation("Invalid request payload")
	}
	return nil
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, appErrors.NewValidation("invalid %s", name)
	}
	return id, nil
}

func currentUser(r *http.Request) (int, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return 0, errUnauthenticated
	}
	return id, nil
}

// userAndID resolves the caller and the {id} path parameter.
func userAndID(r *http.Request) (int, int, error) {
	userID, err := currentUser(r)
	if err != nil {
		return 0, 0, err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return userID, id, nil
}
