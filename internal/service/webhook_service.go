// internal/service/webhook_service.go
package service

import (
	"context"
	"log/slog"

	"github.com/unclebandit/mailer-backend/internal/metrics"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/tracker"
	"github.com/unclebandit/mailer-backend/internal/webhook"
)

// ReconcileResult is the webhook acknowledgement. Received is true for
// every well-formed event, matched or not.
type ReconcileResult struct {
	Received bool `json:"received"`
	Matched  bool `json:"-"`
	Applied  bool `json:"-"`
}

// WebhookService applies provider delivery events to delivery records.
type WebhookService struct {
	Tracker  *tracker.Tracker
	Verifier webhook.Verifier
	Queue    queue.Queue
	Logger   *slog.Logger
}

// Metric label for events that are unverified, unmatched or unmapped. The
// raw event name never reaches a label.
const otherStatus = "other"

func (s *WebhookService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// HandlePayload parses, validates and verifies a raw body, then reconciles it.
func (s *WebhookService) HandlePayload(ctx context.Context, contentType string, body []byte) (*ReconcileResult, error) {
	event, err := webhook.Parse(contentType, body)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(otherStatus, "invalid").Inc()
		return nil, err
	}
	if err := event.Validate(); err != nil {
		metrics.WebhookEvents.WithLabelValues(otherStatus, "invalid").Inc()
		return nil, err
	}
	if s.Verifier != nil {
		if err := s.Verifier.Verify(event); err != nil {
			metrics.WebhookEvents.WithLabelValues(otherStatus, "rejected").Inc()
			s.logger().Warn("webhook signature rejected", "event", event.Event, "message_id", event.MessageID)
			return nil, err
		}
	}
	return s.Reconcile(ctx, event)
}

// Reconcile looks the record up by provider message id and moves it to the
// event's status. Unknown ids and events without a status are acknowledged
// and change nothing.
func (s *WebhookService) Reconcile(ctx context.Context, event webhook.Event) (*ReconcileResult, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	log := s.logger().With("event", event.Event, "message_id", event.MessageID)
	result := &ReconcileResult{Received: true}

	rec, err := s.Tracker.FindByExternalID(ctx, event.MessageID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		log.Info("unknown message id")
		metrics.WebhookEvents.WithLabelValues(otherStatus, "unknown").Inc()
		return result, nil
	}
	result.Matched = true

	status, ok := event.Status()
	if !ok {
		log.Info("event ignored", "record_id", rec.ID)
		metrics.WebhookEvents.WithLabelValues(otherStatus, "ignored").Inc()
		return result, nil
	}

	updated, err := s.Tracker.UpdateStatus(ctx, rec.ID, status, event.MessageID)
	if err != nil {
		return nil, err
	}
	result.Applied = true
	metrics.WebhookEvents.WithLabelValues(string(status), "applied").Inc()
	log.Info("delivery updated", "record_id", rec.ID, "campaign_id", rec.CampaignID, "status", status)

	if s.Queue != nil {
		ev := queue.DeliveryUpdatedEvent{
			RecordID:   updated.ID,
			CampaignID: updated.CampaignID,
			MessageID:  updated.MessageID,
			Event:      event.Event,
			Status:     updated.Status,
			At:         updated.UpdatedAt,
		}
		if err := s.Queue.Publish(queue.TopicDeliveryUpdated, ev); err != nil {
			log.Warn("failed to publish delivery.updated", "error", err)
		}
	}
	return result, nil
}
