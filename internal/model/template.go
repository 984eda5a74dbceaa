// internal/model/template.go
package model

import (
	"encoding/json"
	"time"
)

type Template struct {
	ID           int             `db:"id" json:"id"`
	UserID       int             `db:"user_id" json:"user_id"`
	Name         string          `db:"name" json:"name"`
	Subject      string          `db:"subject" json:"subject"`
	HTMLContent  string          `db:"html_content" json:"html_content"`
	PlainText    string          `db:"plain_text" json:"plain_text"`
	EditorBlocks json.RawMessage `db:"editor_blocks" json:"editor_blocks,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
