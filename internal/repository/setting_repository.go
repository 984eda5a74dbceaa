// internal/repository/setting_repository.go
package repository

import (
	"context"
	"database/sql"
)

type SettingRepository struct {
	DB *sql.DB
}

func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=$1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := r.DB.ExecContext(ctx, query, key, value)
	return err
}

var _ SettingRepositoryInterface = (*SettingRepository)(nil)
