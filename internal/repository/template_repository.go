// internal/repository/template_repository.go
package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

type TemplateRepository struct {
	DB *sql.DB
}

const templateColumns = `id, user_id, name, subject, html_content, plain_text, editor_blocks, created_at, updated_at`

func scanTemplate(row rowScanner) (*model.Template, error) {
	var t model.Template
	var blocks []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Subject, &t.HTMLContent, &t.PlainText, &blocks, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.EditorBlocks = blocks
	return &t, nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.Template) error {
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	query := `
		INSERT INTO templates (user_id, name, subject, html_content, plain_text, editor_blocks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.UserID, t.Name, t.Subject, t.HTMLContent, t.PlainText, nullJSON(t.EditorBlocks), t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *TemplateRepository) GetByID(ctx context.Context, id int) (*model.Template, error) {
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("template", id)
	}
	return t, err
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID int) ([]*model.Template, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Update(ctx context.Context, t *model.Template) error {
	t.UpdatedAt = time.Now()
	query := `
		UPDATE templates
		SET name=$1, subject=$2, html_content=$3, plain_text=$4, editor_blocks=$5, updated_at=$6
		WHERE id=$7
	`
	res, err := r.DB.ExecContext(ctx, query, t.Name, t.Subject, t.HTMLContent, t.PlainText, nullJSON(t.EditorBlocks), t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("template", t.ID)
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM templates WHERE id=$1`, id)
	return err
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
