package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailer-backend/internal/model"
)

func TestSettingsMaskSecrets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := &SettingsService{Settings: f.repos.Settings}

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.MailgunAPIKey)
	assert.Nil(t, got.MailgunDomain)

	require.NoError(t, svc.Update(ctx, Settings{
		MailgunAPIKey: strp("key-123"),
		MailgunDomain: strp("mg.example.com"),
		MailProvider:  strp(""),
	}))

	got, err = svc.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.MailgunAPIKey)
	assert.Equal(t, "****", *got.MailgunAPIKey)
	assert.Equal(t, "mg.example.com", *got.MailgunDomain)
	assert.Nil(t, got.MailProvider)

	require.NoError(t, svc.Update(ctx, Settings{MailgunAPIKey: strp("****")}))
	stored, ok, err := f.repos.Settings.Get(ctx, model.SettingMailgunAPIKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "key-123", stored)
}

func TestDashboardCountsOwnResources(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com", "b@example.com")
	_, err := f.campaigns.SendCampaign(ctx, camp.ID)
	require.NoError(t, err)

	d, err := f.stats.Dashboard(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Contacts)
	assert.Equal(t, 1, d.Lists)
	assert.Equal(t, 1, d.Campaigns)
	assert.Equal(t, 2, d.TotalEmailsSent)
	require.Len(t, d.RecentCampaigns, 1)
	assert.Equal(t, 2, d.RecentCampaigns[0].Stats.Sent)

	other := f.user(t, "other@example.com")
	empty, err := f.stats.Dashboard(ctx, other.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Campaigns)
	assert.NotNil(t, empty.RecentCampaigns)
}
