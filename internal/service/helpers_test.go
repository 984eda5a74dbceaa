package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailer-backend/internal/filestore"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/repository"
	"github.com/unclebandit/mailer-backend/internal/tracker"
	"github.com/unclebandit/mailer-backend/internal/transport"
)

// fakeTransport records every message and fails recipients listed in fail.
type fakeTransport struct {
	mu   sync.Mutex
	sent []transport.Message
	fail map[string]error
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(_ context.Context, msg transport.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[msg.To]; err != nil {
		return "", err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("<%d.%s@mg.example.com>", len(f.sent), msg.To), nil
}

type fakeResolver struct {
	tr  transport.Transport
	err error
}

func (f *fakeResolver) Resolve(context.Context) (transport.Transport, error) {
	return f.tr, f.err
}

var errRejected = errors.New("recipient rejected")

type fixture struct {
	repos     *repository.Repositories
	tracker   *tracker.Tracker
	transport *fakeTransport
	resolver  *fakeResolver
	queue     *queue.InMemoryQueue
	access    *AccessService
	campaigns *CampaignService
	lists     *ListService
	templates *TemplateService
	contacts  *ContactService
	shares    *ShareService
	webhooks  *WebhookService
	stats     *StatsService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	repos := store.Repositories()

	f := &fixture{
		repos:     repos,
		tracker:   tracker.New(repos.Deliveries),
		transport: &fakeTransport{fail: map[string]error{}},
		queue:     queue.NewInMemoryQueue(discardLogger()),
	}
	t.Cleanup(func() { f.queue.Close() })
	f.resolver = &fakeResolver{tr: f.transport}
	f.access = &AccessService{Lists: repos.Lists, Templates: repos.Templates, Campaigns: repos.Campaigns, Shares: repos.Shares}
	f.campaigns = &CampaignService{
		Campaigns:  repos.Campaigns,
		Lists:      repos.Lists,
		Templates:  repos.Templates,
		Tracker:    f.tracker,
		Transports: f.resolver,
		Access:     f.access,
		Queue:      f.queue,
		Logger:     discardLogger(),
	}
	f.lists = &ListService{Lists: repos.Lists, Contacts: repos.Contacts, Access: f.access}
	f.templates = &TemplateService{Templates: repos.Templates, Access: f.access}
	f.contacts = &ContactService{Contacts: repos.Contacts}
	f.shares = &ShareService{Shares: repos.Shares, Users: repos.Users, Access: f.access}
	f.webhooks = &WebhookService{Tracker: f.tracker, Queue: f.queue, Logger: discardLogger()}
	f.stats = &StatsService{Contacts: repos.Contacts, Lists: repos.Lists, Campaigns: repos.Campaigns, Tracker: f.tracker}
	return f
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x", Name: email, Role: "user", Active: true}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u
}

func strp(s string) *string { return &s }

func intp(n int) *int { return &n }

// draftCampaign creates a list with one contact per email and a draft
// campaign targeting it.
func (f *fixture) draftCampaign(t *testing.T, userID int, emails ...string) *model.Campaign {
	t.Helper()
	ctx := context.Background()
	list, err := f.lists.Create(ctx, userID, ListInput{Name: strp("Newsletter")})
	require.NoError(t, err)
	for i, email := range emails {
		c, err := f.contacts.Create(ctx, userID, ContactInput{
			Email: strp(email),
			Name:  strp(fmt.Sprintf("Contact %d", i+1)),
			Tags:  &[]string{"vip"},
		})
		require.NoError(t, err)
		require.NoError(t, f.lists.AddContact(ctx, userID, list.ID, c.ID))
	}
	camp, err := f.campaigns.CreateCampaign(ctx, userID, CampaignInput{
		Name:        strp("Spring launch"),
		Subject:     strp("Hello {{name}}"),
		HTMLContent: strp("<p>Hi {{name}}, you are {{tag1}}</p>"),
		PlainText:   strp("Hi {{email}}"),
		ListID:      intp(list.ID),
	})
	require.NoError(t, err)
	return camp
}
