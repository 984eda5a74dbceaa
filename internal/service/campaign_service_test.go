package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/repository"
	"github.com/unclebandit/mailer-backend/internal/transport"
)

func TestSendCampaignDeliversToEveryMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com", "b@example.com")

	var events []queue.CampaignSentEvent
	var mu sync.Mutex
	require.NoError(t, f.queue.Subscribe(queue.TopicCampaignSent, func(payload any) error {
		var ev queue.CampaignSentEvent
		if err := queue.Decode(payload, &ev); err != nil {
			return err
		}
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		return nil
	}))

	res, err := f.campaigns.Send(ctx, owner.ID, camp.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Errors)

	got, err := f.repos.Campaigns.GetByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignSent, got.Status)
	assert.Equal(t, 2, got.SentCount)
	require.NotNil(t, got.SentAt)

	records, err := f.tracker.Records(ctx, camp.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, model.DeliverySent, r.Status)
		assert.NotEmpty(t, r.MessageID)
		assert.NotContains(t, r.MessageID, "<")
		assert.NotNil(t, r.SentAt)
	}

	require.Len(t, f.transport.sent, 2)
	var msg transport.Message
	for _, m := range f.transport.sent {
		if m.To == "a@example.com" {
			msg = m
		}
	}
	assert.Equal(t, "Hello Contact 1", msg.Subject)
	assert.Equal(t, "<p>Hi Contact 1, you are vip</p>", msg.HTML)
	assert.Equal(t, "Hi a@example.com", msg.Text)
	assert.Equal(t, []string{"Spring launch"}, msg.Tags)

	f.queue.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, camp.ID, events[0].CampaignID)
	assert.Equal(t, 2, events[0].Sent)
}

func TestSendCampaignPartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com", "bad@example.com", "c@example.com")
	f.transport.fail["bad@example.com"] = errRejected

	res, err := f.campaigns.SendCampaign(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, SendError{Email: "bad@example.com", Error: errRejected.Error()}, res.Errors[0])

	got, err := f.repos.Campaigns.GetByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignSent, got.Status)
	assert.Equal(t, 2, got.SentCount)

	stats, err := f.tracker.Stats(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Sent)
	assert.Equal(t, 1, stats.Queued, "rejected recipients stay queued unless MarkFailed is set")
}

func TestSendCampaignMarkFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.campaigns.MarkFailed = true
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "bad@example.com")
	f.transport.fail["bad@example.com"] = errRejected

	res, err := f.campaigns.SendCampaign(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 1, res.Failed)

	records, err := f.tracker.Records(ctx, camp.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.DeliveryFailed, records[0].Status)
	assert.Equal(t, errRejected.Error(), records[0].LastError)
}

func TestSendCampaignTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com")

	_, err := f.campaigns.SendCampaign(ctx, camp.ID)
	require.NoError(t, err)

	_, err = f.campaigns.SendCampaign(ctx, camp.ID)
	assert.ErrorIs(t, err, appErrors.ErrAlreadySent)

	records, err := f.tracker.Records(ctx, camp.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Len(t, f.transport.sent, 1)
}

func TestSendCampaignConcurrentCallsSendOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com", "b@example.com")

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.campaigns.SendCampaign(ctx, camp.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, appErrors.IsValidation(err) || appErrors.IsConflict(err), "unexpected error %v", err)
	}
	assert.Equal(t, 1, succeeded)

	records, err := f.tracker.Records(ctx, camp.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSendCampaignGuardsLeaveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("no list", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user(t, "owner@example.com")
		camp, err := f.campaigns.CreateCampaign(ctx, owner.ID, CampaignInput{
			Name: strp("No list"), Subject: strp("s"), HTMLContent: strp("<p>x</p>"),
		})
		require.NoError(t, err)

		_, err = f.campaigns.SendCampaign(ctx, camp.ID)
		assert.ErrorIs(t, err, appErrors.ErrNoRecipients)
		got, _ := f.repos.Campaigns.GetByID(ctx, camp.ID)
		assert.Equal(t, model.CampaignDraft, got.Status)
	})

	t.Run("empty list", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user(t, "owner@example.com")
		camp := f.draftCampaign(t, owner.ID)

		_, err := f.campaigns.SendCampaign(ctx, camp.ID)
		assert.ErrorIs(t, err, appErrors.ErrNoRecipients)
		got, _ := f.repos.Campaigns.GetByID(ctx, camp.ID)
		assert.Equal(t, model.CampaignDraft, got.Status)
	})

	t.Run("transport unconfigured is rejected instead of tallied as failed", func(t *testing.T) {
		f := newFixture(t)
		f.resolver.err = appErrors.ErrTransportUnconfigured
		owner := f.user(t, "owner@example.com")
		camp := f.draftCampaign(t, owner.ID, "a@example.com")

		_, err := f.campaigns.SendCampaign(ctx, camp.ID)
		assert.ErrorIs(t, err, appErrors.ErrTransportUnconfigured)
		got, _ := f.repos.Campaigns.GetByID(ctx, camp.ID)
		assert.Equal(t, model.CampaignDraft, got.Status)
		assert.Zero(t, got.SentCount)
		records, _ := f.tracker.Records(ctx, camp.ID)
		assert.Empty(t, records)
	})

	t.Run("sending", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user(t, "owner@example.com")
		camp := f.draftCampaign(t, owner.ID, "a@example.com")
		ok, err := f.repos.Campaigns.TransitionStatus(ctx, camp.ID, model.CampaignDraft, model.CampaignSending)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = f.campaigns.SendCampaign(ctx, camp.ID)
		assert.ErrorIs(t, err, appErrors.ErrSendInProgress)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.campaigns.SendCampaign(ctx, 404)
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestSendRequiresEditPermission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	viewer := f.user(t, "viewer@example.com")
	stranger := f.user(t, "stranger@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com")

	_, err := f.shares.Share(ctx, owner.ID, ShareInput{
		ResourceType: "campaigns", ResourceID: camp.ID, SharedWithEmail: viewer.Email, Permission: "view",
	})
	require.NoError(t, err)

	_, err = f.campaigns.Send(ctx, viewer.ID, camp.ID)
	assert.True(t, appErrors.IsForbidden(err))

	_, err = f.campaigns.Send(ctx, stranger.ID, camp.ID)
	assert.True(t, appErrors.IsNotFound(err))

	got, _ := f.repos.Campaigns.GetByID(ctx, camp.ID)
	assert.Equal(t, model.CampaignDraft, got.Status)
}

func TestCreateCampaignCopiesTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")

	tpl, err := f.templates.Create(ctx, owner.ID, TemplateInput{
		Name: strp("Welcome"), Subject: strp("Welcome {{name}}"), HTMLContent: strp("<h1>Hi</h1>"), PlainText: strp("Hi"),
	})
	require.NoError(t, err)

	camp, err := f.campaigns.CreateCampaign(ctx, owner.ID, CampaignInput{Name: strp("From template"), TemplateID: intp(tpl.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Welcome {{name}}", camp.Subject)
	assert.Equal(t, "<h1>Hi</h1>", camp.HTMLContent)
	assert.Equal(t, "Hi", camp.PlainText)
	require.NotNil(t, camp.TemplateID)
	assert.Equal(t, model.CampaignDraft, camp.Status)

	_, err = f.campaigns.CreateCampaign(ctx, owner.ID, CampaignInput{Name: strp("Empty")})
	assert.True(t, appErrors.IsValidation(err))
}

func TestUpdateCampaignLockedAfterSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com")

	updated, err := f.campaigns.UpdateCampaign(ctx, owner.ID, camp.ID, CampaignInput{Subject: strp("New subject")})
	require.NoError(t, err)
	assert.Equal(t, "New subject", updated.Subject)

	_, err = f.campaigns.SendCampaign(ctx, camp.ID)
	require.NoError(t, err)

	_, err = f.campaigns.UpdateCampaign(ctx, owner.ID, camp.ID, CampaignInput{Subject: strp("Too late")})
	assert.ErrorIs(t, err, appErrors.ErrCampaignLocked)
}

func TestDeleteCampaignRemovesRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com")
	_, err := f.campaigns.SendCampaign(ctx, camp.ID)
	require.NoError(t, err)

	require.NoError(t, f.campaigns.DeleteCampaign(ctx, owner.ID, camp.ID))
	_, err = f.repos.Campaigns.GetByID(ctx, camp.ID)
	assert.True(t, appErrors.IsNotFound(err))
	records, err := f.tracker.Records(ctx, camp.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// flakyCampaigns fails the first failures MarkSent calls.
type flakyCampaigns struct {
	repository.CampaignRepositoryInterface
	failures int
	calls    int
}

func (r *flakyCampaigns) MarkSent(ctx context.Context, id, sent int, at time.Time) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("connection reset")
	}
	return r.CampaignRepositoryInterface.MarkSent(ctx, id, sent, at)
}

func TestSendCampaignRetriesMarkSent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := &flakyCampaigns{CampaignRepositoryInterface: f.repos.Campaigns, failures: 1}
	f.campaigns.Campaigns = repo
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com")

	res, err := f.campaigns.SendCampaign(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 2, repo.calls)

	got, err := f.repos.Campaigns.GetByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignSent, got.Status)
	assert.Equal(t, 1, got.SentCount)
}

func TestFinishSendRecoversStuckCampaign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.transport.fail["b@example.com"] = errRejected
	f.campaigns.Campaigns = &flakyCampaigns{CampaignRepositoryInterface: f.repos.Campaigns, failures: 2}
	owner := f.user(t, "owner@example.com")
	camp := f.draftCampaign(t, owner.ID, "a@example.com", "b@example.com", "c@example.com")

	_, err := f.campaigns.SendCampaign(ctx, camp.ID)
	require.Error(t, err)
	got, err := f.repos.Campaigns.GetByID(ctx, camp.ID)
	require.NoError(t, err)
	require.Equal(t, model.CampaignSending, got.Status)

	_, err = f.campaigns.SendCampaign(ctx, camp.ID)
	assert.ErrorIs(t, err, appErrors.ErrSendInProgress)

	f.campaigns.Campaigns = f.repos.Campaigns
	sent, err := f.campaigns.FinishSend(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	got, err = f.repos.Campaigns.GetByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignSent, got.Status)
	assert.Equal(t, 2, got.SentCount)
	assert.NotNil(t, got.SentAt)

	_, err = f.campaigns.FinishSend(ctx, camp.ID)
	assert.True(t, appErrors.IsConflict(err))
}
