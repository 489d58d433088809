package settings

import (
	"context"
	"time"

	"snapfind/internal/common"
)

type CompanySettings struct {
	CompanyID                common.UUID `json:"company_id"`
	AutoStageMovementEnabled bool        `json:"auto_stage_movement_enabled"`
	UpdatedAt                time.Time   `json:"updated_at"`
}

type Repository interface {
	// GetByCompany returns not-found for companies that never saved
	// settings; callers treat that as all automation disabled.
	GetByCompany(ctx context.Context, companyID common.UUID) (*CompanySettings, error)
}
