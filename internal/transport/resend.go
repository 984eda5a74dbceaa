// internal/transport/resend.go
package transport

import (
	"context"
	"fmt"
	"regexp"

	"github.com/resend/resend-go/v2"
)

type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(apiKey, from string) *Resend {
	if from == "" {
		from = "onboarding@resend.dev"
	}
	return &Resend{client: resend.NewClient(apiKey), from: from}
}

func (r *Resend) Name() string { return ProviderResend }

// Resend tag values only allow ASCII letters, numbers, underscores and dashes.
var resendTagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	for _, t := range msg.Tags {
		params.Tags = append(params.Tags, resend.Tag{Name: "campaign", Value: resendTagUnsafe.ReplaceAllString(t, "_")})
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return sent.Id, nil
}
