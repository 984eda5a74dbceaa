// internal/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TotalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailer_http_request_duration_seconds",
			Help:    "Histogram of HTTP response duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// EmailsTotal counts per-recipient send outcomes ("sent", "failed").
	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailer_emails_total",
			Help: "Emails handed to the transport, by outcome",
		},
		[]string{"outcome"},
	)

	// WebhookEvents is labelled by mapped delivery status, "other" for
	// anything unverified, unmatched or unmapped.
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailer_webhook_events_total",
			Help: "Provider events received, by delivery status and outcome",
		},
		[]string{"status", "outcome"},
	)

	SendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailer_send_duration_seconds",
			Help:    "Wall time of one campaign send loop",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)
)

// Register adds every collector to the default registry. Call once at startup.
func Register() {
	prometheus.MustRegister(TotalRequests, RequestDuration, EmailsTotal, WebhookEvents, SendDuration)
}
