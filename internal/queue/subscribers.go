package queue

import "log/slog"

// StartAuditSubscribers logs every domain event. It is the default consumer
// so published events are always visible somewhere.
func StartAuditSubscribers(q Queue, logger *slog.Logger) error {
	log := logger.With("component", "audit")

	if err := q.Subscribe(TopicCampaignSent, func(payload any) error {
		var ev CampaignSentEvent
		if err := Decode(payload, &ev); err != nil {
			return err
		}
		log.Info("campaign sent",
			"campaign_id", ev.CampaignID,
			"user_id", ev.UserID,
			"sent", ev.Sent,
			"failed", ev.Failed,
		)
		return nil
	}); err != nil {
		return err
	}

	return q.Subscribe(TopicDeliveryUpdated, func(payload any) error {
		var ev DeliveryUpdatedEvent
		if err := Decode(payload, &ev); err != nil {
			return err
		}
		log.Debug("delivery updated",
			"record_id", ev.RecordID,
			"campaign_id", ev.CampaignID,
			"status", ev.Status,
		)
		return nil
	})
}
