// internal/repository/share_repository.go
package repository

import (
	"context"
	"database/sql"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

type ShareRepository struct {
	DB *sql.DB
}

const shareColumns = `s.id, s.resource_type, s.resource_id, s.owner_id, s.shared_with_id, s.permission, s.created_at`

func scanShare(row rowScanner, joined bool) (*model.Share, error) {
	var s model.Share
	dest := []any{&s.ID, &s.ResourceType, &s.ResourceID, &s.OwnerID, &s.SharedWithID, &s.Permission, &s.CreatedAt}
	if joined {
		dest = append(dest, &s.Email, &s.Name)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShareRepository) Upsert(ctx context.Context, s *model.Share) error {
	query := `
		INSERT INTO shares (resource_type, resource_id, owner_id, shared_with_id, permission, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (resource_type, resource_id, shared_with_id)
		DO UPDATE SET permission = EXCLUDED.permission, owner_id = EXCLUDED.owner_id
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query, s.ResourceType, s.ResourceID, s.OwnerID, s.SharedWithID, s.Permission).
		Scan(&s.ID, &s.CreatedAt)
}

func (r *ShareRepository) GetByID(ctx context.Context, id int) (*model.Share, error) {
	s, err := scanShare(r.DB.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM shares s WHERE s.id=$1`, id), false)
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("share", id)
	}
	return s, err
}

func (r *ShareRepository) Find(ctx context.Context, kind model.ResourceKind, resourceID, userID int) (*model.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares s WHERE s.resource_type=$1 AND s.resource_id=$2 AND s.shared_with_id=$3`
	s, err := scanShare(r.DB.QueryRowContext(ctx, query, kind, resourceID, userID), false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *ShareRepository) ListForResource(ctx context.Context, kind model.ResourceKind, resourceID, ownerID int) ([]*model.Share, error) {
	query := `
		SELECT ` + shareColumns + `, u.email, u.name
		FROM shares s
		JOIN users u ON u.id = s.shared_with_id
		WHERE s.resource_type=$1 AND s.resource_id=$2 AND s.owner_id=$3
		ORDER BY s.created_at, s.id
	`
	return r.list(ctx, query, kind, resourceID, ownerID)
}

func (r *ShareRepository) ListSharedWith(ctx context.Context, userID int, kind model.ResourceKind) ([]*model.Share, error) {
	query := `
		SELECT ` + shareColumns + `, u.email, u.name
		FROM shares s
		JOIN users u ON u.id = s.owner_id
		WHERE s.shared_with_id=$1 AND s.resource_type=$2
		ORDER BY s.created_at DESC, s.id DESC
	`
	return r.list(ctx, query, userID, kind)
}

func (r *ShareRepository) list(ctx context.Context, query string, args ...any) ([]*model.Share, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := []*model.Share{}
	for rows.Next() {
		s, err := scanShare(rows, true)
		if err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func (r *ShareRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM shares WHERE id=$1`, id)
	return err
}

var _ ShareRepositoryInterface = (*ShareRepository)(nil)
