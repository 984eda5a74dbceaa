package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":3080", cfg.HTTPAddr)
	assert.Equal(t, "data/email-marketer.json", cfg.DataFile)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Minute, cfg.WebhookMaxAge)
	assert.Equal(t, "mailer.events", cfg.AMQPExchange)
	assert.True(t, cfg.SendMarkFailed)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("SEND_MARK_FAILED", "false")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("MAILGUN_EU", "true")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.False(t, cfg.SendMarkFailed)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.MailgunEU)
}

func TestRejectsBadExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "0s")
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	_, err := fromViper(v)
	assert.Error(t, err)
}
