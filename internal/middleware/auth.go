package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/unclebandit/mailer-backend/internal/service"
)

type key string

const (
	contextUserIDKey key = "user_id"
	contextEmailKey  key = "email"
)

func UserIDFromContext(ctx context.Context) (int, bool) {
	uid, ok := ctx.Value(contextUserIDKey).(int)
	return uid, ok
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(contextEmailKey).(string)
	return email
}

// WithUser stores an authenticated identity on ctx.
func WithUser(ctx context.Context, userID int, email string) context.Context {
	ctx = context.WithValue(ctx, contextUserIDKey, userID)
	return context.WithValue(ctx, contextEmailKey, email)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func AuthMiddleware(tokenService service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			userID, email, err := tokenService.ValidateToken(tokenStr)
			if err != nil {
				writeError(w, http.StatusForbidden, "Invalid or expired token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, email)))
		})
	}
}
