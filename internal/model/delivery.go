// internal/model/delivery.go
package model

import "time"

type DeliveryStatus string

const (
	DeliveryQueued       DeliveryStatus = "queued"
	DeliverySent         DeliveryStatus = "sent"
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryOpened       DeliveryStatus = "opened"
	DeliveryClicked      DeliveryStatus = "clicked"
	DeliveryBounced      DeliveryStatus = "bounced"
	DeliveryComplained   DeliveryStatus = "complained"
	DeliveryUnsubscribed DeliveryStatus = "unsubscribed"
	// DeliveryFailed marks a record whose send attempt was rejected by the
	// transport, as opposed to one that was never attempted.
	DeliveryFailed DeliveryStatus = "failed"
)

// timestampColumns is the fixed status -> lifecycle column mapping.
var timestampColumns = map[DeliveryStatus]string{
	DeliverySent:       "sent_at",
	DeliveryDelivered:  "delivered_at",
	DeliveryOpened:     "opened_at",
	DeliveryClicked:    "clicked_at",
	DeliveryBounced:    "bounced_at",
	DeliveryComplained: "complained_at",
}

// TimestampColumn returns the lifecycle column stamped when a record enters
// status, or "" for statuses without one.
func TimestampColumn(status DeliveryStatus) string {
	return timestampColumns[status]
}

// DeliveryRecord is one recipient of one campaign send (table email_tracking).
type DeliveryRecord struct {
	ID           int            `db:"id" json:"id"`
	CampaignID   int            `db:"campaign_id" json:"campaign_id"`
	ContactID    int            `db:"contact_id" json:"contact_id"`
	Email        string         `db:"email" json:"email"`
	Status       DeliveryStatus `db:"status" json:"status"`
	MessageID    string         `db:"message_id" json:"message_id,omitempty"`
	LastError    string         `db:"last_error" json:"last_error,omitempty"`
	SentAt       *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	DeliveredAt  *time.Time     `db:"delivered_at" json:"delivered_at,omitempty"`
	OpenedAt     *time.Time     `db:"opened_at" json:"opened_at,omitempty"`
	ClickedAt    *time.Time     `db:"clicked_at" json:"clicked_at,omitempty"`
	BouncedAt    *time.Time     `db:"bounced_at" json:"bounced_at,omitempty"`
	ComplainedAt *time.Time     `db:"complained_at" json:"complained_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// DeliveryUpdate is one status change. Empty MessageID and LastError leave
// the stored values untouched.
type DeliveryUpdate struct {
	Status    DeliveryStatus
	MessageID string
	LastError string
	At        time.Time
}

// Apply moves the record to u.Status, stamping the matching lifecycle field.
// Other timestamps are left alone and any status may follow any other.
func (r *DeliveryRecord) Apply(u DeliveryUpdate) {
	r.Status = u.Status
	if u.MessageID != "" {
		r.MessageID = u.MessageID
	}
	if u.LastError != "" {
		r.LastError = u.LastError
	}
	if field := r.timestampField(u.Status); field != nil {
		t := u.At
		*field = &t
	}
	r.UpdatedAt = u.At
}

func (r *DeliveryRecord) timestampField(status DeliveryStatus) **time.Time {
	switch status {
	case DeliverySent:
		return &r.SentAt
	case DeliveryDelivered:
		return &r.DeliveredAt
	case DeliveryOpened:
		return &r.OpenedAt
	case DeliveryClicked:
		return &r.ClickedAt
	case DeliveryBounced:
		return &r.BouncedAt
	case DeliveryComplained:
		return &r.ComplainedAt
	}
	return nil
}

// DeliveryStats counts a campaign's records by current status.
type DeliveryStats struct {
	Total        int `json:"total"`
	Queued       int `json:"queued"`
	Sent         int `json:"sent"`
	Delivered    int `json:"delivered"`
	Opened       int `json:"opened"`
	Clicked      int `json:"clicked"`
	Bounced      int `json:"bounced"`
	Complained   int `json:"complained"`
	Unsubscribed int `json:"unsubscribed"`
	Failed       int `json:"failed"`
}

// Add counts n records in status.
func (s *DeliveryStats) Add(status DeliveryStatus, n int) {
	s.Total += n
	switch status {
	case DeliveryQueued:
		s.Queued += n
	case DeliverySent:
		s.Sent += n
	case DeliveryDelivered:
		s.Delivered += n
	case DeliveryOpened:
		s.Opened += n
	case DeliveryClicked:
		s.Clicked += n
	case DeliveryBounced:
		s.Bounced += n
	case DeliveryComplained:
		s.Complained += n
	case DeliveryUnsubscribed:
		s.Unsubscribed += n
	case DeliveryFailed:
		s.Failed += n
	}
}
