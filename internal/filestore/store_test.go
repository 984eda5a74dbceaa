package filestore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

func openStore(t *testing.T) (*Store, *repository.Repositories) {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "store.json"))
	require.NoError(t, err)
	return s, s.Repositories()
}

func TestStoreReloadsFromDisk(t *testing.T) {
	ctx := context.Background()
	s, repos := openStore(t)

	u := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner", Role: "user", Active: true}
	require.NoError(t, repos.Users.Create(ctx, u))
	c := &model.Contact{UserID: u.ID, Email: "a@example.com", Name: "A", Tags: model.Tags{"vip"}}
	require.NoError(t, repos.Contacts.Create(ctx, c))
	require.NoError(t, repos.Settings.Set(ctx, model.SettingMailgunDomain, "mg.example.com"))

	reopened, err := Open(s.Path())
	require.NoError(t, err)
	again := reopened.Repositories()

	got, err := again.Users.GetByEmail(ctx, "OWNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash, "password hash survives the round trip")

	contact, err := again.Contacts.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Tags{"vip"}, contact.Tags)

	v, ok, err := again.Settings.Get(ctx, model.SettingMailgunDomain)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "mg.example.com", v)

	c2 := &model.Contact{UserID: u.ID, Email: "b@example.com"}
	require.NoError(t, again.Contacts.Create(ctx, c2))
	assert.Greater(t, c2.ID, c.ID, "ids keep increasing after reload")
}

func TestContactEmailUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	_, repos := openStore(t)

	require.NoError(t, repos.Contacts.Create(ctx, &model.Contact{UserID: 1, Email: "a@example.com"}))
	err := repos.Contacts.Create(ctx, &model.Contact{UserID: 1, Email: "A@Example.com"})
	assert.True(t, appErrors.IsConflict(err))
	require.NoError(t, repos.Contacts.Create(ctx, &model.Contact{UserID: 2, Email: "a@example.com"}))
}

func TestContactListFilters(t *testing.T) {
	ctx := context.Background()
	_, repos := openStore(t)

	for _, c := range []*model.Contact{
		{UserID: 1, Email: "alice@example.com", Name: "Alice", Tags: model.Tags{"VIP"}},
		{UserID: 1, Email: "bob@example.com", Name: "Bob"},
		{UserID: 1, Email: "carol@example.com", Name: "Carol", Tags: model.Tags{"vip"}},
		{UserID: 2, Email: "dave@example.com", Name: "Dave", Tags: model.Tags{"vip"}},
	} {
		require.NoError(t, repos.Contacts.Create(ctx, c))
	}

	got, err := repos.Contacts.List(ctx, model.ContactFilter{UserID: 1, Tag: "vip"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = repos.Contacts.List(ctx, model.ContactFilter{UserID: 1, Search: "BOB"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob@example.com", got[0].Email)

	got, err = repos.Contacts.List(ctx, model.ContactFilter{UserID: 1, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice@example.com", got[0].Email, "newest first, so the oldest is last")

	n, err := repos.Contacts.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListMembershipCascades(t *testing.T) {
	ctx := context.Background()
	_, repos := openStore(t)

	l := &model.List{UserID: 1, Name: "Newsletter"}
	require.NoError(t, repos.Lists.Create(ctx, l))
	a := &model.Contact{UserID: 1, Email: "a@example.com"}
	b := &model.Contact{UserID: 1, Email: "b@example.com"}
	require.NoError(t, repos.Contacts.Create(ctx, a))
	require.NoError(t, repos.Contacts.Create(ctx, b))

	require.NoError(t, repos.Lists.AddMember(ctx, l.ID, a.ID))
	require.NoError(t, repos.Lists.AddMember(ctx, l.ID, a.ID))
	require.NoError(t, repos.Lists.AddMember(ctx, l.ID, b.ID))

	n, err := repos.Lists.CountMembers(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "adding an existing member is a no-op")

	require.NoError(t, repos.Contacts.Delete(ctx, a.ID))
	members, err := repos.Lists.Members(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, b.ID, members[0].ID)

	require.NoError(t, repos.Lists.Delete(ctx, l.ID))
	n, err = repos.Lists.CountMembers(ctx, l.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCampaignTransitionStatusIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	_, repos := openStore(t)

	c := &model.Campaign{UserID: 1, Name: "Launch", Subject: "Hi", HTMLContent: "<p>hi</p>"}
	require.NoError(t, repos.Campaigns.Create(ctx, c))
	assert.Equal(t, model.CampaignDraft, c.Status)

	var wg sync.WaitGroup
	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repos.Campaigns.TransitionStatus(ctx, c.ID, model.CampaignDraft, model.CampaignSending)
			assert.NoError(t, err)
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Campaigns.MarkSent(ctx, c.ID, 3, at))
	got, err := repos.Campaigns.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignSent, got.Status)
	assert.Equal(t, 3, got.SentCount)
	require.NotNil(t, got.SentAt)
	assert.True(t, at.Equal(*got.SentAt))
}

func TestCampaignDeleteCascadesDeliveries(t *testing.T) {
	ctx := context.Background()
	_, repos := openStore(t)

	c := &model.Campaign{UserID: 1, Name: "Launch"}
	require.NoError(t, repos.Campaigns.Create(ctx, c))
	rec := &model.DeliveryRecord{CampaignID: c.ID, ContactID: 9, Email: "x@example.com"}
	require.NoError(t, repos.Deliveries.Create(ctx, rec))

	require.NoError(t, repos.Campaigns.Delete(ctx, c.ID))
	_, err := repos.Deliveries.GetByID(ctx, rec.ID)
	assert.True(t, appErrors.IsNotFound(err))

	_, err = repos.Campaigns.GetByID(ctx, c.ID)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestDeliveryUpdateAndStats(t *testing.T) {
	ctx := context.Background()
	_, repos := openStore(t)

	c := &model.Campaign{UserID: 1, Name: "Launch"}
	require.NoError(t, repos.Campaigns.Create(ctx, c))
	a := &model.DeliveryRecord{CampaignID: c.ID, ContactID: 1, Email: "a@example.com"}
	b := &model.DeliveryRecord{CampaignID: c.ID, ContactID: 2, Email: "b@example.com"}
	require.NoError(t, repos.Deliveries.Create(ctx, a))
	require.NoError(t, repos.Deliveries.Create(ctx, b))

	now := time.Now()
	_, err := repos.Deliveries.Update(ctx, a.ID, model.DeliveryUpdate{Status: model.DeliverySent, MessageID: "m1@mg", At: now})
	require.NoError(t, err)

	found, err := repos.Deliveries.FindByMessageID(ctx, "m1@mg")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a.ID, found.ID)

	missing, err := repos.Deliveries.FindByMessageID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	stats, err := repos.Deliveries.CountByStatus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryStats{Total: 2, Queued: 1, Sent: 1}, stats)
}

func TestShareUpsertAndJoins(t *testing.T) {
	ctx := context.Background()
	_, repos := openStore(t)

	owner := &model.User{Email: "owner@example.com", Name: "Owner"}
	guest := &model.User{Email: "guest@example.com", Name: "Guest"}
	require.NoError(t, repos.Users.Create(ctx, owner))
	require.NoError(t, repos.Users.Create(ctx, guest))

	s := &model.Share{ResourceType: model.KindList, ResourceID: 5, OwnerID: owner.ID, SharedWithID: guest.ID, Permission: model.PermissionView}
	require.NoError(t, repos.Shares.Upsert(ctx, s))
	again := &model.Share{ResourceType: model.KindList, ResourceID: 5, OwnerID: owner.ID, SharedWithID: guest.ID, Permission: model.PermissionEdit}
	require.NoError(t, repos.Shares.Upsert(ctx, again))
	assert.Equal(t, s.ID, again.ID)

	shares, err := repos.Shares.ListForResource(ctx, model.KindList, 5, owner.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, model.PermissionEdit, shares[0].Permission)
	assert.Equal(t, "guest@example.com", shares[0].Email)

	withMe, err := repos.Shares.ListSharedWith(ctx, guest.ID, model.KindList)
	require.NoError(t, err)
	require.Len(t, withMe, 1)
	assert.Equal(t, "Owner", withMe[0].Name)

	found, err := repos.Shares.Find(ctx, model.KindTemplate, 5, guest.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
