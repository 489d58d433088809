package postgres

import (
	"context"
	"database/sql"
	"errors"

	"snapfind/internal/common"
	"snapfind/internal/domain/settings"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetByCompany(ctx context.Context, companyID common.UUID) (*settings.CompanySettings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT company_id, auto_stage_movement_enabled, updated_at FROM company_settings WHERE company_id = $1`, companyID)
	var s settings.CompanySettings
	if err := row.Scan(&s.CompanyID, &s.AutoStageMovementEnabled, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "company settings not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load company settings", err)
	}
	return &s, nil
}
