// internal/repository/list_repository.go
package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

type ListRepository struct {
	DB *sql.DB
}

const listColumns = `id, user_id, name, description, created_at, updated_at`

func scanList(row rowScanner) (*model.List, error) {
	var l model.List
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListRepository) Create(ctx context.Context, l *model.List) error {
	now := time.Now()
	l.CreatedAt, l.UpdatedAt = now, now
	query := `
		INSERT INTO lists (user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, l.UserID, l.Name, l.Description, l.CreatedAt, l.UpdatedAt).Scan(&l.ID)
}

func (r *ListRepository) GetByID(ctx context.Context, id int) (*model.List, error) {
	l, err := scanList(r.DB.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("list", id)
	}
	return l, err
}

func (r *ListRepository) ListByUser(ctx context.Context, userID int) ([]*model.List, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+listColumns+` FROM lists WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []*model.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *ListRepository) Update(ctx context.Context, l *model.List) error {
	l.UpdatedAt = time.Now()
	res, err := r.DB.ExecContext(ctx, `UPDATE lists SET name=$1, description=$2, updated_at=$3 WHERE id=$4`,
		l.Name, l.Description, l.UpdatedAt, l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("list", l.ID)
	}
	return nil
}

func (r *ListRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM lists WHERE id=$1`, id)
	return err
}

func (r *ListRepository) AddMember(ctx context.Context, listID, contactID int) error {
	query := `
		INSERT INTO list_members (list_id, contact_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (list_id, contact_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, listID, contactID)
	return err
}

func (r *ListRepository) RemoveMember(ctx context.Context, listID, contactID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM list_members WHERE list_id=$1 AND contact_id=$2`, listID, contactID)
	return err
}

func (r *ListRepository) Members(ctx context.Context, listID int) ([]*model.Contact, error) {
	query := `
		SELECT c.id, c.user_id, c.email, c.name, c.tags, c.created_at, c.updated_at
		FROM contacts c
		JOIN list_members lm ON c.id = lm.contact_id
		WHERE lm.list_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, listID)
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

func (r *ListRepository) CountMembers(ctx context.Context, listID int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM list_members WHERE list_id=$1`, listID).Scan(&n)
	return n, err
}

var _ ListRepositoryInterface = (*ListRepository)(nil)
