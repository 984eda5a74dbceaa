// internal/tracker/tracker.go
package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

// Tracker owns the per-recipient delivery records of every campaign send.
type Tracker struct {
	Repo repository.DeliveryRepositoryInterface
	Now  func() time.Time
}

func New(repo repository.DeliveryRepositoryInterface) *Tracker {
	return &Tracker{Repo: repo, Now: time.Now}
}

func (t *Tracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// NormalizeMessageID trims the angle brackets Mailgun puts around ids in send
// responses but not in events.
func NormalizeMessageID(id string) string {
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(id), "<"), ">")
}

// Create records one queued recipient and returns the record id.
func (t *Tracker) Create(ctx context.Context, campaignID, contactID int, email string) (int, error) {
	rec := &model.DeliveryRecord{
		CampaignID: campaignID,
		ContactID:  contactID,
		Email:      email,
		Status:     model.DeliveryQueued,
	}
	if err := t.Repo.Create(ctx, rec); err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// UpdateStatus moves a record to status and stamps its timestamp. A non-empty
// externalID replaces the stored message id.
func (t *Tracker) UpdateStatus(ctx context.Context, id int, status model.DeliveryStatus, externalID string) (*model.DeliveryRecord, error) {
	return t.Repo.Update(ctx, id, model.DeliveryUpdate{
		Status:    status,
		MessageID: NormalizeMessageID(externalID),
		At:        t.now(),
	})
}

func (t *Tracker) MarkSent(ctx context.Context, id int, externalID string) (*model.DeliveryRecord, error) {
	return t.UpdateStatus(ctx, id, model.DeliverySent, externalID)
}

// MarkFailed records a rejected send attempt.
func (t *Tracker) MarkFailed(ctx context.Context, id int, reason string) (*model.DeliveryRecord, error) {
	return t.Repo.Update(ctx, id, model.DeliveryUpdate{
		Status:    model.DeliveryFailed,
		LastError: reason,
		At:        t.now(),
	})
}

// FindByExternalID returns nil, nil when no record carries the id.
func (t *Tracker) FindByExternalID(ctx context.Context, externalID string) (*model.DeliveryRecord, error) {
	id := NormalizeMessageID(externalID)
	if id == "" {
		return nil, nil
	}
	return t.Repo.FindByMessageID(ctx, id)
}

func (t *Tracker) Records(ctx context.Context, campaignID int) ([]*model.DeliveryRecord, error) {
	return t.Repo.ListByCampaign(ctx, campaignID)
}

func (t *Tracker) Stats(ctx context.Context, campaignID int) (model.DeliveryStats, error) {
	return t.Repo.CountByStatus(ctx, campaignID)
}
