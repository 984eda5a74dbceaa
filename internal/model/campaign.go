// internal/model/campaign.go
package model

import (
	"encoding/json"
	"time"
)

type CampaignStatus string

const (
	CampaignDraft   CampaignStatus = "draft"
	CampaignSending CampaignStatus = "sending"
	CampaignSent    CampaignStatus = "sent"
)

type Campaign struct {
	ID           int             `db:"id" json:"id"`
	UserID       int             `db:"user_id" json:"user_id"`
	Name         string          `db:"name" json:"name"`
	TemplateID   *int            `db:"template_id" json:"template_id,omitempty"`
	ListID       *int            `db:"list_id" json:"list_id,omitempty"`
	Subject      string          `db:"subject" json:"subject"`
	HTMLContent  string          `db:"html_content" json:"html_content"`
	PlainText    string          `db:"plain_text" json:"plain_text"`
	EditorBlocks json.RawMessage `db:"editor_blocks" json:"editor_blocks,omitempty"`
	Status       CampaignStatus  `db:"status" json:"status"`
	SentCount    int             `db:"sent_count" json:"sent_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	SentAt       *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
}

// CampaignWithStats is what the read endpoints return.
type CampaignWithStats struct {
	Campaign
	Stats DeliveryStats `json:"stats"`
}
