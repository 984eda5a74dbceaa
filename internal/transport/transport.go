// internal/transport/transport.go
package transport

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Message is one rendered email for one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Tags    []string
}

// Transport hands a message to a provider and returns the provider's
// message id, which later correlates delivery events.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) (string, error)
}

// Log writes messages to the logger instead of sending them. Used for local
// development.
type Log struct {
	Logger *slog.Logger
}

func (l *Log) Name() string { return ProviderLog }

func (l *Log) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.NewString() + "@log.local"
	if l.Logger != nil {
		l.Logger.Info("email not sent, log transport",
			"to", msg.To,
			"subject", msg.Subject,
			"tags", msg.Tags,
			"message_id", id,
		)
	}
	return id, nil
}
