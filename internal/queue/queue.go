// internal/queue/queue.go
package queue

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/unclebandit/mailer-backend/internal/model"
)

// Topics published by the server.
const (
	TopicCampaignSent    = "campaign.sent"
	TopicDeliveryUpdated = "delivery.updated"
)

// CampaignSentEvent is published once a send loop finishes.
type CampaignSentEvent struct {
	CampaignID int       `json:"campaign_id"`
	UserID     int       `json:"user_id"`
	Name       string    `json:"name"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	SentAt     time.Time `json:"sent_at"`
}

// DeliveryUpdatedEvent is published after a provider event changes a record.
type DeliveryUpdatedEvent struct {
	RecordID   int                  `json:"record_id"`
	CampaignID int                  `json:"campaign_id"`
	MessageID  string               `json:"message_id"`
	Event      string               `json:"event"`
	Status     model.DeliveryStatus `json:"status"`
	At         time.Time            `json:"at"`
}

// Queue fans events out to subscribers. Delivery is best effort and nothing
// is retried.
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
	Close() error
}

// Decode copies payload into v. In-memory subscribers receive the published
// value; AMQP subscribers receive json.RawMessage.
func Decode(payload any, v any) error {
	var raw []byte
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		raw = b
	}
	return json.Unmarshal(raw, v)
}

// InMemoryQueue runs each handler on its own goroutine.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	wg       sync.WaitGroup
	logger   *slog.Logger
}

func NewInMemoryQueue(logger *slog.Logger) *InMemoryQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
		logger:   logger.With("component", "queue", "driver", "memory"),
	}
}

// Publish returns immediately. Topics without subscribers drop the event.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	for _, handler := range handlers {
		q.wg.Add(1)
		go func(h func(payload any) error) {
			defer q.wg.Done()
			if err := h(payload); err != nil {
				q.logger.Warn("subscriber failed", "topic", topic, "error", err)
			}
		}(handler)
	}
	return nil
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every in-flight handler has returned.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

func (q *InMemoryQueue) Close() error {
	q.Wait()
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
