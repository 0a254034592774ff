package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// MaintenanceMode returns whether the bot is closed for non-admins.
// A missing settings row means maintenance off.
func (r *SettingsRepository) MaintenanceMode(ctx context.Context) (bool, error) {
	var mode bool
	err := r.db.QueryRow(ctx,
		`SELECT maintenance_mode FROM app_settings WHERE id = 1`).Scan(&mode)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return mode, err
}

// SetMaintenanceMode flips maintenance mode, recording who flipped it.
func (r *SettingsRepository) SetMaintenanceMode(ctx context.Context, mode bool, updatedBy int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO app_settings (id, maintenance_mode, updated_by, updated_at)
		 VALUES (1, $1, $2, now())
		 ON CONFLICT (id) DO UPDATE
		 SET maintenance_mode = $1, updated_by = $2, updated_at = now()`,
		mode, updatedBy)
	return err
}
