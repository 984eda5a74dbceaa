// internal/service/stats_service.go
package service

import (
	"context"

	"github.com/unclebandit/mailer-backend/internal/model"
	"github.com/unclebandit/mailer-backend/internal/repository"
	"github.com/unclebandit/mailer-backend/internal/tracker"
)

const recentCampaignLimit = 10

type Dashboard struct {
	Contacts        int                        `json:"contacts"`
	Lists           int                        `json:"lists"`
	Campaigns       int                        `json:"campaigns"`
	TotalEmailsSent int                        `json:"totalEmailsSent"`
	RecentCampaigns []*model.CampaignWithStats `json:"recentCampaigns"`
}

type StatsService struct {
	Contacts  repository.ContactRepositoryInterface
	Lists     repository.ListRepositoryInterface
	Campaigns repository.CampaignRepositoryInterface
	Tracker   *tracker.Tracker
}

// Dashboard counts the user's own resources. Stats are recomputed per call.
func (s *StatsService) Dashboard(ctx context.Context, userID int) (*Dashboard, error) {
	contacts, err := s.Contacts.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	lists, err := s.Lists.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	campaigns, err := s.Campaigns.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Contacts:        contacts,
		Lists:           len(lists),
		Campaigns:       len(campaigns),
		RecentCampaigns: []*model.CampaignWithStats{},
	}
	for i, c := range campaigns {
		d.TotalEmailsSent += c.SentCount
		if i >= recentCampaignLimit {
			continue
		}
		stats, err := s.Tracker.Stats(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		d.RecentCampaigns = append(d.RecentCampaigns, &model.CampaignWithStats{Campaign: *c, Stats: stats})
	}
	return d, nil
}
