// internal/filestore/campaigns.go
package filestore

import (
	"context"
	"slices"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

type TemplateRepository struct {
	s *Store
}

func (r *TemplateRepository) Create(_ context.Context, t *model.Template) error {
	return r.s.update(func(d *dataset) error {
		now := time.Now()
		t.ID = d.nextID("templates")
		t.CreatedAt, t.UpdatedAt = now, now
		d.Templates[t.ID] = clone(t)
		return nil
	})
}

func (r *TemplateRepository) GetByID(_ context.Context, id int) (*model.Template, error) {
	var out *model.Template
	err := r.s.view(func(d *dataset) error {
		t, ok := d.Templates[id]
		if !ok {
			return appErrors.NewNotFound("template", id)
		}
		out = clone(t)
		return nil
	})
	return out, err
}

func (r *TemplateRepository) ListByUser(_ context.Context, userID int) ([]*model.Template, error) {
	out := []*model.Template{}
	err := r.s.view(func(d *dataset) error {
		for _, t := range d.Templates {
			if t.UserID == userID {
				out = append(out, clone(t))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.Template) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, err
}

func (r *TemplateRepository) Update(_ context.Context, t *model.Template) error {
	return r.s.update(func(d *dataset) error {
		stored, ok := d.Templates[t.ID]
		if !ok {
			return appErrors.NewNotFound("template", t.ID)
		}
		t.UpdatedAt = time.Now()
		stored.Name = t.Name
		stored.Subject = t.Subject
		stored.HTMLContent = t.HTMLContent
		stored.PlainText = t.PlainText
		stored.EditorBlocks = t.EditorBlocks
		stored.UpdatedAt = t.UpdatedAt
		return nil
	})
}

func (r *TemplateRepository) Delete(_ context.Context, id int) error {
	return r.s.update(func(d *dataset) error {
		delete(d.Templates, id)
		for _, c := range d.Campaigns {
			if c.TemplateID != nil && *c.TemplateID == id {
				c.TemplateID = nil
			}
		}
		return nil
	})
}

var _ repository.TemplateRepositoryInterface = (*TemplateRepository)(nil)

type CampaignRepository struct {
	s *Store
}

func cloneCampaign(c *model.Campaign) *model.Campaign {
	out := clone(c)
	out.TemplateID = cloneInt(c.TemplateID)
	out.ListID = cloneInt(c.ListID)
	return out
}

func (r *CampaignRepository) Create(_ context.Context, c *model.Campaign) error {
	return r.s.update(func(d *dataset) error {
		now := time.Now()
		c.ID = d.nextID("campaigns")
		c.CreatedAt, c.UpdatedAt = now, now
		if c.Status == "" {
			c.Status = model.CampaignDraft
		}
		d.Campaigns[c.ID] = cloneCampaign(c)
		return nil
	})
}

func (r *CampaignRepository) GetByID(_ context.Context, id int) (*model.Campaign, error) {
	var out *model.Campaign
	err := r.s.view(func(d *dataset) error {
		c, ok := d.Campaigns[id]
		if !ok {
			return appErrors.NewCampaignNotFound(id)
		}
		out = cloneCampaign(c)
		return nil
	})
	return out, err
}

func (r *CampaignRepository) ListByUser(_ context.Context, userID, limit int) ([]*model.Campaign, error) {
	out := []*model.Campaign{}
	err := r.s.view(func(d *dataset) error {
		for _, c := range d.Campaigns {
			if c.UserID == userID {
				out = append(out, cloneCampaign(c))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.Campaign) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *CampaignRepository) Update(_ context.Context, c *model.Campaign) error {
	return r.s.update(func(d *dataset) error {
		stored, ok := d.Campaigns[c.ID]
		if !ok {
			return appErrors.NewCampaignNotFound(c.ID)
		}
		c.UpdatedAt = time.Now()
		stored.Name = c.Name
		stored.TemplateID = cloneInt(c.TemplateID)
		stored.ListID = cloneInt(c.ListID)
		stored.Subject = c.Subject
		stored.HTMLContent = c.HTMLContent
		stored.PlainText = c.PlainText
		stored.EditorBlocks = c.EditorBlocks
		stored.UpdatedAt = c.UpdatedAt
		return nil
	})
}

func (r *CampaignRepository) Delete(_ context.Context, id int) error {
	return r.s.update(func(d *dataset) error {
		delete(d.Campaigns, id)
		for rid, rec := range d.Deliveries {
			if rec.CampaignID == id {
				delete(d.Deliveries, rid)
			}
		}
		return nil
	})
}

func (r *CampaignRepository) TransitionStatus(_ context.Context, id int, from, to model.CampaignStatus) (bool, error) {
	moved := false
	err := r.s.update(func(d *dataset) error {
		c, ok := d.Campaigns[id]
		if !ok {
			return appErrors.NewCampaignNotFound(id)
		}
		if c.Status != from {
			return nil
		}
		c.Status = to
		c.UpdatedAt = time.Now()
		moved = true
		return nil
	})
	return moved, err
}

func (r *CampaignRepository) MarkSent(_ context.Context, id, sent int, at time.Time) error {
	return r.s.update(func(d *dataset) error {
		c, ok := d.Campaigns[id]
		if !ok {
			return appErrors.NewCampaignNotFound(id)
		}
		c.Status = model.CampaignSent
		c.SentCount += sent
		c.SentAt = &at
		c.UpdatedAt = at
		return nil
	})
}

var _ repository.CampaignRepositoryInterface = (*CampaignRepository)(nil)
