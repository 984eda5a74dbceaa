// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	LogLevel    string
	DataFile    string
	DatabaseURL string

	JWTSecret string
	JWTExpiry time.Duration

	AMQPURL      string
	AMQPExchange string

	MailProvider    string
	MailgunAPIKey   string
	MailgunDomain   string
	MailgunEU       bool
	MailFromName    string
	ResendAPIKey    string
	ResendFromEmail string

	WebhookSigningKey string
	WebhookMaxAge     time.Duration

	// SendMarkFailed moves records the transport rejected to "failed". When
	// false they stay "queued".
	SendMarkFailed bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":3080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATA_FILE", "data/email-marketer.json")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY", "168h")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "mailer.events")
	v.SetDefault("MAIL_PROVIDER", "mailgun")
	v.SetDefault("MAILGUN_API_KEY", "")
	v.SetDefault("MAILGUN_DOMAIN", "")
	v.SetDefault("MAILGUN_EU", false)
	v.SetDefault("MAIL_FROM_NAME", "Email Marketer")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RESEND_FROM_EMAIL", "")
	v.SetDefault("MAILGUN_WEBHOOK_SIGNING_KEY", "")
	v.SetDefault("WEBHOOK_MAX_AGE", "5m")
	v.SetDefault("SEND_MARK_FAILED", true)
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DataFile:          v.GetString("DATA_FILE"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiry:         v.GetDuration("JWT_EXPIRY"),
		AMQPURL:           v.GetString("AMQP_URL"),
		AMQPExchange:      v.GetString("AMQP_EXCHANGE"),
		MailProvider:      v.GetString("MAIL_PROVIDER"),
		MailgunAPIKey:     v.GetString("MAILGUN_API_KEY"),
		MailgunDomain:     v.GetString("MAILGUN_DOMAIN"),
		MailgunEU:         v.GetBool("MAILGUN_EU"),
		MailFromName:      v.GetString("MAIL_FROM_NAME"),
		ResendAPIKey:      v.GetString("RESEND_API_KEY"),
		ResendFromEmail:   v.GetString("RESEND_FROM_EMAIL"),
		WebhookSigningKey: v.GetString("MAILGUN_WEBHOOK_SIGNING_KEY"),
		WebhookMaxAge:     v.GetDuration("WEBHOOK_MAX_AGE"),
		SendMarkFailed:    v.GetBool("SEND_MARK_FAILED"),
	}
	if cfg.JWTExpiry <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY must be a positive duration")
	}
	return cfg, nil
}
