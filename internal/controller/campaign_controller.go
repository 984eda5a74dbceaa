// internal/controller/campaign_controller.go
package controller

import (
	"log/slog"
	"net/http"

	"github.com/unclebandit/mailer-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Logger          *slog.Logger
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	campaigns, err := c.CampaignService.ListCampaigns(r.Context(), userID)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	campaign, err := c.CampaignService.GetCampaignDetails(r.Context(), userID, id)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// DeliveryRecords lists the per-recipient records of a campaign.
func (c *CampaignController) DeliveryRecords(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	records, err := c.CampaignService.DeliveryRecords(r.Context(), userID, id)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var body service.CampaignInput
	if err := decode(r, &body); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	campaign, err := c.CampaignService.CreateCampaign(r.Context(), userID, body)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	var body service.CampaignInput
	if err := decode(r, &body); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	campaign, err := c.CampaignService.UpdateCampaign(r.Context(), userID, id, body)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	if err := c.CampaignService.DeleteCampaign(r.Context(), userID, id); err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, success)
}

// SendCampaign blocks until every recipient has been attempted.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndID(r)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	result, err := c.CampaignService.Send(r.Context(), userID, id)
	if err != nil {
		RespondErr(w, r, c.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
