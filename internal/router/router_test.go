package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailer-backend/internal/controller"
	"github.com/unclebandit/mailer-backend/internal/filestore"
	"github.com/unclebandit/mailer-backend/internal/handler"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/service"
	"github.com/unclebandit/mailer-backend/internal/tracker"
	"github.com/unclebandit/mailer-backend/internal/transport"
)

type testServer struct {
	http.Handler
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := filestore.Open(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	repos := store.Repositories()

	q := queue.NewInMemoryQueue(logger)
	t.Cleanup(func() { q.Close() })
	trk := tracker.New(repos.Deliveries)
	access := &service.AccessService{Lists: repos.Lists, Templates: repos.Templates, Campaigns: repos.Campaigns, Shares: repos.Shares}
	tokens := service.NewJWTService("router-test", time.Hour)
	resolver := &transport.Resolver{
		Settings: repos.Settings,
		Defaults: transport.Defaults{Provider: transport.ProviderLog},
		Logger:   logger,
	}

	h := &Handlers{
		Tokens: tokens,
		Auth:   &controller.AuthController{Auth: &service.AuthService{Users: repos.Users, Tokens: tokens, Logger: logger}, Logger: logger},
		Contacts: &controller.ContactController{Contacts: &service.ContactService{Contacts: repos.Contacts}, Logger: logger},
		Lists: &controller.ListController{
			Lists:  &service.ListService{Lists: repos.Lists, Contacts: repos.Contacts, Access: access},
			Logger: logger,
		},
		Templates: &controller.TemplateController{Templates: &service.TemplateService{Templates: repos.Templates, Access: access}, Logger: logger},
		Campaigns: &controller.CampaignController{
			CampaignService: &service.CampaignService{
				Campaigns:  repos.Campaigns,
				Lists:      repos.Lists,
				Templates:  repos.Templates,
				Tracker:    trk,
				Transports: resolver,
				Access:     access,
				Queue:      q,
				Logger:     logger,
				MarkFailed: true,
			},
			Logger: logger,
		},
		Shares:   &controller.ShareController{Shares: &service.ShareService{Shares: repos.Shares, Users: repos.Users, Access: access}, Logger: logger},
		Settings: &controller.SettingsController{Settings: &service.SettingsService{Settings: repos.Settings}, Logger: logger},
		Stats: &handler.StatsHandler{
			Stats:  &service.StatsService{Contacts: repos.Contacts, Lists: repos.Lists, Campaigns: repos.Campaigns, Tracker: trk},
			Logger: logger,
		},
		Webhooks: &handler.WebhookHandler{Webhooks: &service.WebhookService{Tracker: trk, Queue: q, Logger: logger}, Logger: logger},
		Health:   handler.NewHealthHandler(nil, logger),
	}
	return &testServer{Handler: NewRouter(h), t: t}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": "secret1", "name": "Tester"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[service.AuthResult](s.t, w).Token
}

func TestEndToEndSendAndReconcile(t *testing.T) {
	s := newTestServer(t)
	token := s.register("owner@example.com")

	w := s.do(http.MethodPost, "/api/contacts", token, map[string]any{"email": "a@example.com", "name": "Alice", "tags": []string{"vip"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	contact := decodeBody[struct{ ID int }](t, w)

	w = s.do(http.MethodPost, "/api/contacts", token, map[string]any{"email": "a@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/lists", token, map[string]any{"name": "Newsletter"})
	require.Equal(t, http.StatusCreated, w.Code)
	list := decodeBody[struct{ ID int }](t, w)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/lists/%d/contacts", list.ID), token, map[string]any{"contactId": contact.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/campaigns", token, map[string]any{
		"name": "Launch", "subject": "Hi {{name}}", "html_content": "<p>{{tag1}}</p>", "list_id": list.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	camp := decodeBody[struct{ ID int }](t, w)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/send", camp.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[service.SendResult](t, w)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Sent)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/send", camp.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "campaign has already been sent", decodeBody[map[string]string](t, w)["error"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d/deliveries", camp.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decodeBody[[]struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	}](t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "sent", records[0].Status)

	w = s.do(http.MethodPost, "/api/webhooks/mailgun", "", map[string]string{"message-id": records[0].MessageID, "event": "opened"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody[map[string]any](t, w)["received"])

	w = s.do(http.MethodPost, "/api/webhooks/mailgun", "", map[string]string{"message-id": "unknown@mg", "event": "opened"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/webhooks/mailgun", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d", camp.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody[struct {
		Status    string `json:"status"`
		SentCount int    `json:"sent_count"`
		Stats     struct {
			Opened int `json:"opened"`
		} `json:"stats"`
	}](t, w)
	assert.Equal(t, "sent", detail.Status)
	assert.Equal(t, 1, detail.SentCount)
	assert.Equal(t, 1, detail.Stats.Opened)

	w = s.do(http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decodeBody[service.Dashboard](t, w)
	assert.Equal(t, 1, dash.TotalEmailsSent)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/api/contacts", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "x@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := s.register("x@example.com")
	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "x@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "x@example.com", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "x@example.com", decodeBody[map[string]any](t, w)["email"])
}

func TestSharingRoutes(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner@example.com")
	guest := s.register("guest@example.com")

	w := s.do(http.MethodPost, "/api/templates", owner, map[string]any{"name": "T", "subject": "S", "html_content": "<p>x</p>"})
	require.Equal(t, http.StatusCreated, w.Code)
	tpl := decodeBody[struct{ ID int }](t, w)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/templates/%d", tpl.ID), guest, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/shares", owner, map[string]any{
		"resourceType": "templates", "resourceId": tpl.ID, "sharedWithEmail": "guest@example.com", "permission": "view",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/templates/%d", tpl.ID), guest, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPut, fmt.Sprintf("/api/templates/%d", tpl.ID), guest, map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/shares/templates/%d", tpl.ID), guest, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only owners can view shares", decodeBody[map[string]string](t, w)["error"])

	w = s.do(http.MethodGet, "/api/shared-with-me", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decodeBody[service.SharedWithMe](t, w)
	assert.Len(t, mine.Templates, 1)
}

func TestSettingsAndHealth(t *testing.T) {
	s := newTestServer(t)
	token := s.register("owner@example.com")

	w := s.do(http.MethodPut, "/api/settings", token, map[string]string{"mailgun_api_key": "key-1", "mailgun_domain": "mg.example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	settings := decodeBody[map[string]any](t, w)
	assert.Equal(t, "****", settings["mailgun_api_key"])
	assert.Nil(t, settings["resend_api_key"])

	w = s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

