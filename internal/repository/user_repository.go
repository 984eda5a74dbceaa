// internal/repository/user_repository.go
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	appErrors "github.com/unclebandit/mailer-backend/internal/errors"
	"github.com/unclebandit/mailer-backend/internal/model"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, email, password_hash, name, role, active, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	query := `
		INSERT INTO users (email, password_hash, name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Role, u.Active, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return appErrors.NewConflict("User already exists")
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("user", id)
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=$1`, strings.ToLower(email)))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("user", 0)
	}
	return u, err
}

func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now()
	query := `
		UPDATE users
		SET email=$1, password_hash=$2, name=$3, role=$4, active=$5, updated_at=$6
		WHERE id=$7
	`
	res, err := r.DB.ExecContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Role, u.Active, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewNotFound("user", u.ID)
	}
	return nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
