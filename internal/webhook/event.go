// internal/webhook/event.go
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

var (
	ErrInvalidPayload   = fmt.Errorf("%w: invalid webhook payload", appErrors.ErrValidation)
	ErrInvalidSignature = fmt.Errorf("%w: invalid webhook signature", appErrors.ErrUnauthorized)
)

const maxFormMemory = 1 << 20

// Event is one provider delivery event, flattened from whichever payload
// shape the provider posted.
type Event struct {
	MessageID string `json:"message_id"`
	Event     string `json:"event"`
	Severity  string `json:"severity,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Reason    string `json:"reason,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
	Token     string `json:"token,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// Validate rejects payloads carrying neither a message id nor an event.
func (e Event) Validate() error {
	if e.MessageID == "" && e.Event == "" {
		return ErrInvalidPayload
	}
	return nil
}

// Status maps the provider's event name onto a delivery status. ok is false
// for events that do not change a record.
func (e Event) Status() (model.DeliveryStatus, bool) {
	switch strings.ToLower(e.Event) {
	case "delivered":
		return model.DeliveryDelivered, true
	case "opened", "open":
		return model.DeliveryOpened, true
	case "clicked", "click":
		return model.DeliveryClicked, true
	case "bounced", "bounce":
		return model.DeliveryBounced, true
	case "complained", "complaint":
		return model.DeliveryComplained, true
	case "unsubscribed", "unsubscribe":
		return model.DeliveryUnsubscribed, true
	case "failed", "dropped":
		if strings.EqualFold(e.Severity, "permanent") {
			return model.DeliveryBounced, true
		}
	}
	return "", false
}

// Parse decodes a webhook body. JSON may be flat or Mailgun's nested
// signature/event-data shape; form and multipart bodies are flat.
func Parse(contentType string, body []byte) (Event, error) {
	mediaType, params, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return Event{}, ErrInvalidPayload
		}
		return fromValues(values), nil
	case "multipart/form-data":
		form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(maxFormMemory)
		if err != nil {
			return Event{}, ErrInvalidPayload
		}
		defer form.RemoveAll()
		return fromValues(form.Value), nil
	}
	return parseJSON(body)
}

func fromValues(v url.Values) Event {
	first := func(keys ...string) string {
		for _, k := range keys {
			if s := v.Get(k); s != "" {
				return s
			}
		}
		return ""
	}
	return Event{
		MessageID: first("message-id", "Message-Id"),
		Event:     first("event"),
		Severity:  first("severity"),
		Recipient: first("recipient"),
		Reason:    first("reason", "error"),
		Timestamp: first("timestamp"),
		Token:     first("token"),
		Signature: first("signature"),
	}
}

type signatureBlock struct {
	Timestamp flexString `json:"timestamp"`
	Token     string     `json:"token"`
	Signature string     `json:"signature"`
}

type eventData struct {
	Event     string `json:"event"`
	Severity  string `json:"severity"`
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
	Message   struct {
		Headers struct {
			MessageID string `json:"message-id"`
		} `json:"headers"`
	} `json:"message"`
}

type jsonPayload struct {
	MessageID    string          `json:"message-id"`
	MessageIDAlt string          `json:"Message-Id"`
	Event        string          `json:"event"`
	Severity     string          `json:"severity"`
	Recipient    string          `json:"recipient"`
	Reason       string          `json:"reason"`
	Timestamp    flexString      `json:"timestamp"`
	Token        string          `json:"token"`
	Signature    json.RawMessage `json:"signature"`
	EventData    *eventData      `json:"event-data"`
}

func parseJSON(body []byte) (Event, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Event{}, nil
	}
	var p jsonPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, ErrInvalidPayload
	}

	e := Event{
		MessageID: p.MessageID,
		Event:     p.Event,
		Severity:  p.Severity,
		Recipient: p.Recipient,
		Reason:    p.Reason,
		Timestamp: string(p.Timestamp),
		Token:     p.Token,
	}
	if e.MessageID == "" {
		e.MessageID = p.MessageIDAlt
	}

	// signature is a string in the flat shape and an object in the nested one.
	if len(p.Signature) > 0 {
		var flat string
		if err := json.Unmarshal(p.Signature, &flat); err == nil {
			e.Signature = flat
		} else {
			var sig signatureBlock
			if err := json.Unmarshal(p.Signature, &sig); err != nil {
				return Event{}, ErrInvalidPayload
			}
			e.Timestamp, e.Token, e.Signature = string(sig.Timestamp), sig.Token, sig.Signature
		}
	}

	if d := p.EventData; d != nil {
		e.Event = d.Event
		e.Severity = d.Severity
		e.Recipient = d.Recipient
		e.Reason = d.Reason
		if id := d.Message.Headers.MessageID; id != "" {
			e.MessageID = id
		}
	}
	return e, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexString(n.String())
	return nil
}
