// internal/service/campaign_service.go
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/metrics"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/repository"
	"github.com/unclebandit/mailer-backend/internal/tracker"
	"github.com/unclebandit/mailer-backend/internal/transport"
)

// TransportResolver picks the outbound transport for the next send.
type TransportResolver interface {
	Resolve(ctx context.Context) (transport.Transport, error)
}

type CampaignService struct {
	Campaigns  repository.CampaignRepositoryInterface
	Lists      repository.ListRepositoryInterface
	Templates  repository.TemplateRepositoryInterface
	Tracker    *tracker.Tracker
	Transports TransportResolver
	Access     *AccessService
	Queue      queue.Queue
	Logger     *slog.Logger

	// MarkFailed moves records the transport rejected to "failed" with the
	// error text. When false they stay "queued".
	MarkFailed bool
}

// CampaignInput carries create and partial-update fields; nil means unset.
type CampaignInput struct {
	Name         *string         `json:"name"`
	Subject      *string         `json:"subject"`
	HTMLContent  *string         `json:"html_content"`
	PlainText    *string         `json:"plain_text"`
	EditorBlocks json.RawMessage `json:"editor_blocks"`
	TemplateID   *int            `json:"template_id"`
	ListID       *int            `json:"list_id"`
}

// SendError is one recipient the transport rejected.
type SendError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

type SendResult struct {
	Success    bool        `json:"success"`
	CampaignID int         `json:"campaign_id"`
	Sent       int         `json:"sent"`
	Failed     int         `json:"failed"`
	Errors     []SendError `json:"errors"`
}

func (s *CampaignService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *CampaignService) withStats(ctx context.Context, c *model.Campaign) (*model.CampaignWithStats, error) {
	stats, err := s.Tracker.Stats(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &model.CampaignWithStats{Campaign: *c, Stats: stats}, nil
}

// ListCampaigns returns owned campaigns, then shared ones, each with stats.
func (s *CampaignService) ListCampaigns(ctx context.Context, userID int) ([]*model.CampaignWithStats, error) {
	campaigns, err := s.Campaigns.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	ids, err := s.Access.SharedIDs(ctx, userID, model.KindCampaign)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		c, err := s.Campaigns.GetByID(ctx, id)
		if appErrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	out := make([]*model.CampaignWithStats, 0, len(campaigns))
	for _, c := range campaigns {
		cs, err := s.withStats(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

func (s *CampaignService) GetCampaignDetails(ctx context.Context, userID, id int) (*model.CampaignWithStats, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindCampaign, id, model.PermissionView); err != nil {
		return nil, err
	}
	c, err := s.Campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, c)
}

// DeliveryRecords lists every recipient record of a campaign.
func (s *CampaignService) DeliveryRecords(ctx context.Context, userID, id int) ([]*model.DeliveryRecord, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindCampaign, id, model.PermissionView); err != nil {
		return nil, err
	}
	return s.Tracker.Records(ctx, id)
}

// CreateCampaign copies subject and content from the template when a
// template id is given and the caller left them empty.
func (s *CampaignService) CreateCampaign(ctx context.Context, userID int, in CampaignInput) (*model.Campaign, error) {
	c := &model.Campaign{
		UserID:       userID,
		Name:         trimmed(in.Name),
		Subject:      trimmed(in.Subject),
		HTMLContent:  deref(in.HTMLContent),
		PlainText:    deref(in.PlainText),
		EditorBlocks: in.EditorBlocks,
		Status:       model.CampaignDraft,
	}
	if c.Name == "" {
		return nil, appErrors.NewValidation("Name is required")
	}
	if err := s.applyTemplate(ctx, userID, c, in.TemplateID); err != nil {
		return nil, err
	}
	if err := s.applyList(ctx, userID, c, in.ListID); err != nil {
		return nil, err
	}
	if c.Subject == "" || strings.TrimSpace(c.HTMLContent) == "" {
		return nil, appErrors.NewValidation("Name, subject, and HTML content are required")
	}

	if err := s.Campaigns.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger().Info("campaign created", "campaign_id", c.ID, "user_id", userID)
	return c, nil
}

func (s *CampaignService) applyTemplate(ctx context.Context, userID int, c *model.Campaign, templateID *int) error {
	if templateID == nil {
		return nil
	}
	if _, err := s.Access.Check(ctx, userID, model.KindTemplate, *templateID, model.PermissionView); err != nil {
		return err
	}
	t, err := s.Templates.GetByID(ctx, *templateID)
	if err != nil {
		return err
	}
	id := t.ID
	c.TemplateID = &id
	if c.Subject == "" {
		c.Subject = t.Subject
	}
	if strings.TrimSpace(c.HTMLContent) == "" {
		c.HTMLContent = t.HTMLContent
		if c.PlainText == "" {
			c.PlainText = t.PlainText
		}
		if len(c.EditorBlocks) == 0 {
			c.EditorBlocks = t.EditorBlocks
		}
	}
	return nil
}

func (s *CampaignService) applyList(ctx context.Context, userID int, c *model.Campaign, listID *int) error {
	if listID == nil {
		return nil
	}
	if _, err := s.Access.Check(ctx, userID, model.KindList, *listID, model.PermissionView); err != nil {
		return err
	}
	id := *listID
	c.ListID = &id
	return nil
}

// UpdateCampaign edits a draft. Campaigns that left draft are immutable.
func (s *CampaignService) UpdateCampaign(ctx context.Context, userID, id int, in CampaignInput) (*model.Campaign, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindCampaign, id, model.PermissionEdit); err != nil {
		return nil, err
	}
	c, err := s.Campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CampaignDraft {
		return nil, appErrors.ErrCampaignLocked
	}

	if in.Name != nil {
		c.Name = trimmed(in.Name)
	}
	if in.Subject != nil {
		c.Subject = trimmed(in.Subject)
	}
	if in.HTMLContent != nil {
		c.HTMLContent = *in.HTMLContent
	}
	if in.PlainText != nil {
		c.PlainText = *in.PlainText
	}
	if in.EditorBlocks != nil {
		c.EditorBlocks = in.EditorBlocks
	}
	if err := s.applyTemplate(ctx, userID, c, in.TemplateID); err != nil {
		return nil, err
	}
	if err := s.applyList(ctx, userID, c, in.ListID); err != nil {
		return nil, err
	}
	if c.Name == "" || c.Subject == "" || strings.TrimSpace(c.HTMLContent) == "" {
		return nil, appErrors.NewValidation("Name, subject, and HTML content are required")
	}

	if err := s.Campaigns.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCampaign also removes the campaign's delivery records.
func (s *CampaignService) DeleteCampaign(ctx context.Context, userID, id int) error {
	if err := s.Access.RequireOwner(ctx, userID, model.KindCampaign, id, "Only owners can delete campaigns"); err != nil {
		return err
	}
	return s.Campaigns.Delete(ctx, id)
}

// Send checks that userID may edit the campaign, then runs SendCampaign.
func (s *CampaignService) Send(ctx context.Context, userID, id int) (*SendResult, error) {
	if _, err := s.Access.Check(ctx, userID, model.KindCampaign, id, model.PermissionEdit); err != nil {
		return nil, err
	}
	return s.SendCampaign(ctx, id)
}

// SendCampaign delivers a draft campaign to every member of its list, one
// recipient at a time. Guards run before anything is written: a campaign that
// is sent, sending, without recipients or without a configured transport is
// left untouched. Per-recipient transport errors are tallied, not returned.
func (s *CampaignService) SendCampaign(ctx context.Context, campaignID int) (*SendResult, error) {
	log := s.logger().With("campaign_id", campaignID)

	campaign, err := s.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	switch campaign.Status {
	case model.CampaignSent:
		return nil, appErrors.ErrAlreadySent
	case model.CampaignSending:
		return nil, appErrors.ErrSendInProgress
	}

	var recipients []*model.Contact
	if campaign.ListID != nil {
		recipients, err = s.Lists.Members(ctx, *campaign.ListID)
		if err != nil && !appErrors.IsNotFound(err) {
			return nil, err
		}
	}
	if len(recipients) == 0 {
		return nil, appErrors.ErrNoRecipients
	}

	tr, err := s.Transports.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.Campaigns.TransitionStatus(ctx, campaignID, model.CampaignDraft, model.CampaignSending)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.Campaigns.GetByID(ctx, campaignID)
		if err == nil && current.Status == model.CampaignSent {
			return nil, appErrors.ErrAlreadySent
		}
		return nil, appErrors.ErrSendInProgress
	}

	// The batch runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	started := time.Now()
	log.Info("campaign send started", "recipients", len(recipients), "transport", tr.Name())

	result := &SendResult{Success: true, CampaignID: campaignID, Errors: []SendError{}}
	for _, contact := range recipients {
		if err := s.sendOne(ctx, tr, campaign, contact); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, SendError{Email: contact.Email, Error: err.Error()})
			metrics.EmailsTotal.WithLabelValues("failed").Inc()
			log.Warn("recipient failed", "email", contact.Email, "error", err)
			continue
		}
		result.Sent++
		metrics.EmailsTotal.WithLabelValues("sent").Inc()
	}

	sentAt := time.Now()
	if err := s.markSent(ctx, campaignID, result.Sent, sentAt); err != nil {
		log.Error("campaign left in sending, run `seeder campaign finish` to recover",
			"sent", result.Sent, "failed", result.Failed, "error", err)
		return nil, err
	}
	metrics.SendDuration.Observe(time.Since(started).Seconds())
	log.Info("campaign send finished", "sent", result.Sent, "failed", result.Failed)

	if s.Queue != nil {
		ev := queue.CampaignSentEvent{
			CampaignID: campaignID,
			UserID:     campaign.UserID,
			Name:       campaign.Name,
			Sent:       result.Sent,
			Failed:     result.Failed,
			SentAt:     sentAt,
		}
		if err := s.Queue.Publish(queue.TopicCampaignSent, ev); err != nil {
			log.Warn("failed to publish campaign.sent", "error", err)
		}
	}
	return result, nil
}

// markSent writes the final state, retrying once.
func (s *CampaignService) markSent(ctx context.Context, campaignID, sent int, at time.Time) error {
	err := s.Campaigns.MarkSent(ctx, campaignID, sent, at)
	if err == nil {
		return nil
	}
	s.logger().Warn("mark sent failed, retrying", "campaign_id", campaignID, "error", err)
	return s.Campaigns.MarkSent(ctx, campaignID, sent, at)
}

// FinishSend moves a campaign stuck in sending to sent, counting every
// delivery record that reached the provider. It returns that count.
func (s *CampaignService) FinishSend(ctx context.Context, campaignID int) (int, error) {
	campaign, err := s.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if campaign.Status != model.CampaignSending {
		return 0, appErrors.NewConflict("campaign %d is %s, not sending", campaignID, campaign.Status)
	}
	stats, err := s.Tracker.Stats(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	sent := stats.Total - stats.Queued - stats.Failed
	if err := s.Campaigns.MarkSent(ctx, campaignID, sent, time.Now()); err != nil {
		return 0, err
	}
	s.logger().Info("stuck campaign finished", "campaign_id", campaignID, "sent", sent, "failed", stats.Failed)
	return sent, nil
}

// sendOne records, renders and sends one recipient. The returned error is
// the one reported to the caller for that recipient.
func (s *CampaignService) sendOne(ctx context.Context, tr transport.Transport, c *model.Campaign, contact *model.Contact) error {
	recordID, err := s.Tracker.Create(ctx, c.ID, contact.ID, contact.Email)
	if err != nil {
		return err
	}

	msg := transport.Message{
		To:      contact.Email,
		Subject: RenderMergeTags(c.Subject, contact),
		HTML:    RenderMergeTags(c.HTMLContent, contact),
		Text:    RenderMergeTags(c.PlainText, contact),
		Tags:    []string{c.Name},
	}
	messageID, sendErr := tr.Send(ctx, msg)
	if sendErr != nil {
		if s.MarkFailed {
			if _, err := s.Tracker.MarkFailed(ctx, recordID, sendErr.Error()); err != nil {
				s.logger().Error("failed to mark record failed", "record_id", recordID, "error", err)
			}
		}
		return sendErr
	}

	if _, err := s.Tracker.MarkSent(ctx, recordID, messageID); err != nil {
		// The provider accepted the message, so it still counts as sent.
		s.logger().Error("failed to mark record sent", "record_id", recordID, "message_id", messageID, "error", err)
	}
	return nil
}

func (s *CampaignService) Count(ctx context.Context, userID int) (int, error) {
	campaigns, err := s.Campaigns.ListByUser(ctx, userID, 0)
	if err != nil {
		return 0, err
	}
	return len(campaigns), nil
}
