// internal/model/user.go
package model

import "time"

type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// Setting keys read by the transport resolver and the settings API.
const (
	SettingMailgunAPIKey = "mailgun_api_key"
	SettingMailgunDomain = "mailgun_domain"
	SettingMailProvider  = "mail_provider"
	SettingResendAPIKey  = "resend_api_key"
	SettingMailFrom      = "mail_from"
)
