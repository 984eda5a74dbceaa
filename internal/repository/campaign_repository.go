// internal/repository/campaign_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, user_id, name, template_id, list_id, subject, html_content, plain_text,
	editor_blocks, status, sent_count, created_at, updated_at, sent_at`

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var blocks []byte
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.TemplateID, &c.ListID, &c.Subject, &c.HTMLContent, &c.PlainText,
		&blocks, &c.Status, &c.SentCount, &c.CreatedAt, &c.UpdatedAt, &c.SentAt)
	if err != nil {
		return nil, err
	}
	c.EditorBlocks = blocks
	return &c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	query := `
		INSERT INTO campaigns (user_id, name, template_id, list_id, subject, html_content, plain_text,
			editor_blocks, status, sent_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		c.UserID, c.Name, c.TemplateID, c.ListID, c.Subject, c.HTMLContent, c.PlainText,
		nullJSON(c.EditorBlocks), c.Status, c.SentCount, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, err
}

func (r *CampaignRepository) ListByUser(ctx context.Context, userID, limit int) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Update writes the editable fields. Status and counters only move through
// TransitionStatus and MarkSent.
func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	c.UpdatedAt = time.Now()
	query := `
		UPDATE campaigns
		SET name=$1, template_id=$2, list_id=$3, subject=$4, html_content=$5, plain_text=$6,
			editor_blocks=$7, updated_at=$8
		WHERE id=$9
	`
	res, err := r.DB.ExecContext(ctx, query,
		c.Name, c.TemplateID, c.ListID, c.Subject, c.HTMLContent, c.PlainText,
		nullJSON(c.EditorBlocks), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM email_tracking WHERE campaign_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ====================== Send state ======================

func (r *CampaignRepository) TransitionStatus(ctx context.Context, id int, from, to model.CampaignStatus) (bool, error) {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`
	res, err := r.DB.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *CampaignRepository) MarkSent(ctx context.Context, id, sent int, at time.Time) error {
	query := `
		UPDATE campaigns
		SET status=$1, sent_at=$2, sent_count=sent_count+$3, updated_at=$2
		WHERE id=$4
	`
	res, err := r.DB.ExecContext(ctx, query, model.CampaignSent, at, sent, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
