package webhook

import (
	"bytes"
	"mime/multipart"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

func TestParseFlatJSON(t *testing.T) {
	e, err := Parse("application/json", []byte(`{"message-id":"abc@mg","event":"opened","timestamp":1700000000}`))
	require.NoError(t, err)
	assert.Equal(t, "abc@mg", e.MessageID)
	assert.Equal(t, "opened", e.Event)
	assert.Equal(t, "1700000000", e.Timestamp)
}

func TestParseCapitalizedMessageID(t *testing.T) {
	e, err := Parse("application/json", []byte(`{"Message-Id":"<abc@mg>","event":"delivered"}`))
	require.NoError(t, err)
	assert.Equal(t, "<abc@mg>", e.MessageID)
}

func TestParseNestedJSON(t *testing.T) {
	body := `{
		"signature": {"timestamp": "1700000000", "token": "tok", "signature": "deadbeef"},
		"event-data": {
			"event": "failed",
			"severity": "permanent",
			"recipient": "a@example.com",
			"message": {"headers": {"message-id": "abc@mg"}}
		}
	}`
	e, err := Parse("application/json; charset=utf-8", []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "abc@mg", e.MessageID)
	assert.Equal(t, "failed", e.Event)
	assert.Equal(t, "tok", e.Token)
	assert.Equal(t, "deadbeef", e.Signature)

	status, ok := e.Status()
	require.True(t, ok)
	assert.Equal(t, model.DeliveryBounced, status)
}

func TestParseForm(t *testing.T) {
	e, err := Parse("application/x-www-form-urlencoded", []byte("message-id=abc%40mg&event=clicked"))
	require.NoError(t, err)
	assert.Equal(t, "abc@mg", e.MessageID)
	assert.Equal(t, "clicked", e.Event)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("Message-Id", "xyz@mg"))
	require.NoError(t, w.WriteField("event", "complained"))
	require.NoError(t, w.Close())

	e, err = Parse(w.FormDataContentType(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "xyz@mg", e.MessageID)
	assert.Equal(t, "complained", e.Event)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("application/json", []byte(`{not json`))
	assert.True(t, appErrors.IsValidation(err))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Event{}.Validate(), ErrInvalidPayload)
	assert.NoError(t, Event{Event: "opened"}.Validate())
	assert.NoError(t, Event{MessageID: "abc"}.Validate())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		event, severity string
		want            model.DeliveryStatus
		ok              bool
	}{
		{"delivered", "", model.DeliveryDelivered, true},
		{"opened", "", model.DeliveryOpened, true},
		{"clicked", "", model.DeliveryClicked, true},
		{"bounced", "", model.DeliveryBounced, true},
		{"complained", "", model.DeliveryComplained, true},
		{"unsubscribed", "", model.DeliveryUnsubscribed, true},
		{"failed", "permanent", model.DeliveryBounced, true},
		{"failed", "temporary", "", false},
		{"accepted", "", "", false},
	}
	for _, tt := range tests {
		got, ok := Event{Event: tt.event, Severity: tt.severity}.Status()
		assert.Equal(t, tt.ok, ok, tt.event)
		assert.Equal(t, tt.want, got, tt.event)
	}
}

func TestMailgunVerifier(t *testing.T) {
	now := time.Unix(1700000100, 0)
	v := NewMailgunVerifier("key", 5*time.Minute)
	v.Now = func() time.Time { return now }

	ts := strconv.FormatInt(now.Add(-time.Minute).Unix(), 10)
	good := Event{Timestamp: ts, Token: "tok", Signature: Sign("key", ts, "tok")}
	assert.NoError(t, v.Verify(good))

	bad := good
	bad.Signature = Sign("other", ts, "tok")
	assert.ErrorIs(t, v.Verify(bad), ErrInvalidSignature)

	stale := strconv.FormatInt(now.Add(-time.Hour).Unix(), 10)
	old := Event{Timestamp: stale, Token: "tok", Signature: Sign("key", stale, "tok")}
	assert.ErrorIs(t, v.Verify(old), ErrInvalidSignature)

	assert.ErrorIs(t, v.Verify(Event{}), ErrInvalidSignature)
	assert.NoError(t, Noop{}.Verify(Event{}))
}
