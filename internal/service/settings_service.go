// internal/service/settings_service.go
package service

import (
	"context"
	"strings"

	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

const maskedSecret = "****"

// Settings is the API view. Secrets are masked and nil when unset.
type Settings struct {
	MailgunAPIKey *string `json:"mailgun_api_key"`
	MailgunDomain *string `json:"mailgun_domain"`
	MailProvider  *string `json:"mail_provider"`
	ResendAPIKey  *string `json:"resend_api_key"`
	MailFrom      *string `json:"mail_from"`
}

var secretSettings = map[string]bool{
	model.SettingMailgunAPIKey: true,
	model.SettingResendAPIKey:  true,
}

type SettingsService struct {
	Settings repository.SettingRepositoryInterface
}

func (s *SettingsService) read(ctx context.Context, key string) (*string, error) {
	v, ok, err := s.Settings.Get(ctx, key)
	if err != nil || !ok || v == "" {
		return nil, err
	}
	if secretSettings[key] {
		masked := maskedSecret
		return &masked, nil
	}
	return &v, nil
}

func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	out := &Settings{}
	fields := []struct {
		key string
		dst **string
	}{
		{model.SettingMailgunAPIKey, &out.MailgunAPIKey},
		{model.SettingMailgunDomain, &out.MailgunDomain},
		{model.SettingMailProvider, &out.MailProvider},
		{model.SettingResendAPIKey, &out.ResendAPIKey},
		{model.SettingMailFrom, &out.MailFrom},
	}
	for _, f := range fields {
		v, err := s.read(ctx, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return out, nil
}

// Update stores only the provided non-empty values. A masked secret echoed
// back by a client is ignored.
func (s *SettingsService) Update(ctx context.Context, in Settings) error {
	fields := []struct {
		key string
		val *string
	}{
		{model.SettingMailgunAPIKey, in.MailgunAPIKey},
		{model.SettingMailgunDomain, in.MailgunDomain},
		{model.SettingMailProvider, in.MailProvider},
		{model.SettingResendAPIKey, in.ResendAPIKey},
		{model.SettingMailFrom, in.MailFrom},
	}
	for _, f := range fields {
		if f.val == nil {
			continue
		}
		v := strings.TrimSpace(*f.val)
		if v == "" || (secretSettings[f.key] && v == maskedSecret) {
			continue
		}
		if err := s.Settings.Set(ctx, f.key, v); err != nil {
			return err
		}
	}
	return nil
}
