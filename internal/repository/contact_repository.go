// internal/repository/contact_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

type ContactRepository struct {
	DB *sql.DB
}

const contactColumns = `id, user_id, email, name, tags, created_at, updated_at`

func scanContact(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	var tags []string
	if err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.Name, pq.Array(&tags), &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Tags = model.Tags(tags)
	return &c, nil
}

func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Tags == nil {
		c.Tags = model.Tags{}
	}
	query := `
		INSERT INTO contacts (user_id, email, name, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.UserID, c.Email, c.Name, pq.Array([]string(c.Tags)), c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if isUniqueViolation(err) {
		return appErrors.NewConflict("Email already exists")
	}
	return err
}

func (r *ContactRepository) GetByID(ctx context.Context, id int) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1`
	c, err := scanContact(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("contact", id)
	}
	return c, err
}

func (r *ContactRepository) List(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE 1=1`
	args := []any{}
	argPos := 1

	if f.UserID != 0 {
		query += fmt.Sprintf(" AND user_id=$%d", argPos)
		args = append(args, f.UserID)
		argPos++
	}
	if f.Search != "" {
		query += fmt.Sprintf(" AND (email ILIKE $%d OR name ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+f.Search+"%")
		argPos++
	}
	if f.Tag != "" {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM unnest(tags) t WHERE lower(t) = lower($%d))", argPos)
		args = append(args, f.Tag)
		argPos++
	}

	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []*model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) Count(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

func (r *ContactRepository) Update(ctx context.Context, c *model.Contact) error {
	c.UpdatedAt = time.Now()
	query := `
		UPDATE contacts
		SET email=$1, name=$2, tags=$3, updated_at=$4
		WHERE id=$5
	`
	res, err := r.DB.ExecContext(ctx, query, c.Email, c.Name, pq.Array([]string(c.Tags)), c.UpdatedAt, c.ID)
	if isUniqueViolation(err) {
		return appErrors.NewConflict("Email already exists")
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("contact", c.ID)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for list_members. Delivery records keep
// their email snapshot and are not touched.
func (r *ContactRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE id=$1`, id)
	return err
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
