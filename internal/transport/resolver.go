// internal/transport/resolver.go
package transport

import (
	"context"
	"log/slog"
	"strings"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

const (
	ProviderMailgun = "mailgun"
	ProviderResend  = "resend"
	ProviderLog     = "log"
)

// Defaults are the environment values used when a setting is not stored.
type Defaults struct {
	Provider      string
	MailgunAPIKey string
	MailgunDomain string
	MailgunEU     bool
	FromName      string
	ResendAPIKey  string
	ResendFrom    string
}

// Resolver builds the transport from the settings table on every call so a
// key changed through the API takes effect on the next send.
type Resolver struct {
	Settings repository.SettingRepositoryInterface
	Defaults Defaults
	Logger   *slog.Logger
}

func (r *Resolver) setting(ctx context.Context, key, fallback string) (string, error) {
	v, ok, err := r.Settings.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	return v, nil
}

// Resolve returns appErrors.ErrTransportUnconfigured when the selected
// provider is missing credentials.
func (r *Resolver) Resolve(ctx context.Context) (Transport, error) {
	provider, err := r.setting(ctx, model.SettingMailProvider, r.Defaults.Provider)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(provider) {
	case "", ProviderMailgun:
		key, err := r.setting(ctx, model.SettingMailgunAPIKey, r.Defaults.MailgunAPIKey)
		if err != nil {
			return nil, err
		}
		domain, err := r.setting(ctx, model.SettingMailgunDomain, r.Defaults.MailgunDomain)
		if err != nil {
			return nil, err
		}
		if key == "" || domain == "" {
			return nil, appErrors.ErrTransportUnconfigured
		}
		fromName, err := r.setting(ctx, model.SettingMailFrom, r.Defaults.FromName)
		if err != nil {
			return nil, err
		}
		return NewMailgun(domain, key, r.Defaults.MailgunEU, fromName), nil

	case ProviderResend:
		key, err := r.setting(ctx, model.SettingResendAPIKey, r.Defaults.ResendAPIKey)
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, appErrors.ErrTransportUnconfigured
		}
		return NewResend(key, r.Defaults.ResendFrom), nil

	case ProviderLog:
		return &Log{Logger: r.Logger}, nil
	}
	return nil, appErrors.NewValidation("unknown mail provider %q", provider)
}
