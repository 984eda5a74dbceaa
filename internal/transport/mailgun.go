// internal/transport/mailgun.go
package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
)

type Mailgun struct {
	client   *mailgun.MailgunImpl
	domain   string
	fromName string
}

func NewMailgun(domain, apiKey string, eu bool, fromName string) *Mailgun {
	mg := mailgun.NewMailgun(domain, apiKey)
	if eu {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}
	if fromName == "" {
		fromName = "Email Marketer"
	}
	return &Mailgun{client: mg, domain: domain, fromName: fromName}
}

func (m *Mailgun) Name() string { return ProviderMailgun }

func (m *Mailgun) Send(ctx context.Context, msg Message) (string, error) {
	from := fmt.Sprintf("%s <postmaster@%s>", m.fromName, m.domain)
	message := m.client.NewMessage(from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	if len(msg.Tags) > 0 {
		if err := message.AddTag(msg.Tags...); err != nil {
			return "", fmt.Errorf("mailgun tags: %w", err)
		}
		message.AddHeader("X-Mailgun-Tagging", strings.Join(msg.Tags, ", "))
	}

	_, id, err := m.client.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}
