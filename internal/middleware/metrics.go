package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unclebandit/mailer-backend/internal/metrics"
)

// MetricsMiddleware labels requests by route pattern so ids do not explode
// the label space.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(startTime).Seconds()
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(ww.Status())

		metrics.TotalRequests.WithLabelValues(r.Method, route, status).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, route, status).Observe(duration)
	})
}
