// internal/filestore/deliveries.go
package filestore

import (
	"context"
	"slices"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
)

type DeliveryRepository struct {
	s *Store
}

func (r *DeliveryRepository) Create(_ context.Context, rec *model.DeliveryRecord) error {
	return r.s.update(func(d *dataset) error {
		if _, ok := d.Campaigns[rec.CampaignID]; !ok {
			return appErrors.NewCampaignNotFound(rec.CampaignID)
		}
		now := time.Now()
		rec.ID = d.nextID("email_tracking")
		rec.CreatedAt, rec.UpdatedAt = now, now
		if rec.Status == "" {
			rec.Status = model.DeliveryQueued
		}
		d.Deliveries[rec.ID] = clone(rec)
		return nil
	})
}

func (r *DeliveryRepository) GetByID(_ context.Context, id int) (*model.DeliveryRecord, error) {
	var out *model.DeliveryRecord
	err := r.s.view(func(d *dataset) error {
		rec, ok := d.Deliveries[id]
		if !ok {
			return appErrors.NewNotFound("delivery record", id)
		}
		out = clone(rec)
		return nil
	})
	return out, err
}

func (r *DeliveryRepository) FindByMessageID(_ context.Context, messageID string) (*model.DeliveryRecord, error) {
	var out *model.DeliveryRecord
	err := r.s.view(func(d *dataset) error {
		for _, rec := range d.Deliveries {
			if rec.MessageID != messageID {
				continue
			}
			if out == nil || rec.ID < out.ID {
				out = rec
			}
		}
		if out != nil {
			out = clone(out)
		}
		return nil
	})
	return out, err
}

func (r *DeliveryRepository) Update(_ context.Context, id int, u model.DeliveryUpdate) (*model.DeliveryRecord, error) {
	var out *model.DeliveryRecord
	err := r.s.update(func(d *dataset) error {
		rec, ok := d.Deliveries[id]
		if !ok {
			return appErrors.NewNotFound("delivery record", id)
		}
		rec.Apply(u)
		out = clone(rec)
		return nil
	})
	return out, err
}

func (r *DeliveryRepository) ListByCampaign(_ context.Context, campaignID int) ([]*model.DeliveryRecord, error) {
	out := []*model.DeliveryRecord{}
	err := r.s.view(func(d *dataset) error {
		for _, rec := range d.Deliveries {
			if rec.CampaignID == campaignID {
				out = append(out, clone(rec))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *model.DeliveryRecord) int { return a.ID - b.ID })
	return out, err
}

func (r *DeliveryRepository) CountByStatus(_ context.Context, campaignID int) (model.DeliveryStats, error) {
	var stats model.DeliveryStats
	err := r.s.view(func(d *dataset) error {
		for _, rec := range d.Deliveries {
			if rec.CampaignID == campaignID {
				stats.Add(rec.Status, 1)
			}
		}
		return nil
	})
	return stats, err
}

var _ repository.DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
