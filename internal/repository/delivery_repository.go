// internal/repository/delivery_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

type DeliveryRepository struct {
	DB *sql.DB
}

const deliveryColumns = `id, campaign_id, contact_id, email, status, message_id, last_error,
	sent_at, delivered_at, opened_at, clicked_at, bounced_at, complained_at, created_at, updated_at`

func scanDelivery(row rowScanner) (*model.DeliveryRecord, error) {
	var d model.DeliveryRecord
	var messageID, lastError sql.NullString
	err := row.Scan(&d.ID, &d.CampaignID, &d.ContactID, &d.Email, &d.Status, &messageID, &lastError,
		&d.SentAt, &d.DeliveredAt, &d.OpenedAt, &d.ClickedAt, &d.BouncedAt, &d.ComplainedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.MessageID = messageID.String
	d.LastError = lastError.String
	return &d, nil
}

func (r *DeliveryRepository) Create(ctx context.Context, d *model.DeliveryRecord) error {
	if d.Status == "" {
		d.Status = model.DeliveryQueued
	}
	query := `
		INSERT INTO email_tracking (campaign_id, contact_id, email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, query, d.CampaignID, d.ContactID, d.Email, d.Status).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id int) (*model.DeliveryRecord, error) {
	d, err := scanDelivery(r.DB.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM email_tracking WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("delivery record", id)
	}
	return d, err
}

func (r *DeliveryRepository) FindByMessageID(ctx context.Context, messageID string) (*model.DeliveryRecord, error) {
	query := `SELECT ` + deliveryColumns + ` FROM email_tracking WHERE message_id=$1 ORDER BY id LIMIT 1`
	d, err := scanDelivery(r.DB.QueryRowContext(ctx, query, messageID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// deliveryUpdateQuery builds the UPDATE for status. The timestamp column comes
// from the fixed status mapping, never from input.
func deliveryUpdateQuery(status model.DeliveryStatus) string {
	set := `status=$1, updated_at=$2,
		message_id=COALESCE(NULLIF($3, ''), message_id),
		last_error=COALESCE(NULLIF($4, ''), last_error)`
	if col := model.TimestampColumn(status); col != "" {
		set += fmt.Sprintf(", %s=$2", col)
	}
	return `UPDATE email_tracking SET ` + set + ` WHERE id=$5 RETURNING ` + deliveryColumns
}

// Update applies u in one statement.
func (r *DeliveryRepository) Update(ctx context.Context, id int, u model.DeliveryUpdate) (*model.DeliveryRecord, error) {
	query := deliveryUpdateQuery(u.Status)
	d, err := scanDelivery(r.DB.QueryRowContext(ctx, query, u.Status, u.At, u.MessageID, u.LastError, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("delivery record", id)
	}
	return d, err
}

func (r *DeliveryRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*model.DeliveryRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+deliveryColumns+` FROM email_tracking WHERE campaign_id=$1 ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*model.DeliveryRecord{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, d)
	}
	return records, rows.Err()
}

func (r *DeliveryRepository) CountByStatus(ctx context.Context, campaignID int) (model.DeliveryStats, error) {
	var stats model.DeliveryStats
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM email_tracking WHERE campaign_id=$1 GROUP BY status`, campaignID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status model.DeliveryStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.Add(status, count)
	}
	return stats, rows.Err()
}

var _ DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
