package pipeline

import (
	"context"

	"snapfind/internal/common"
)

type Repository interface {
	Create(ctx context.Context, stage Stage) (*Stage, error)
	GetByID(ctx context.Context, id common.UUID) (*Stage, error)
	ListByJob(ctx context.Context, jobID common.UUID) ([]Stage, error)
	UpdateName(ctx context.Context, id common.UUID, name string) (*Stage, error)
	// UpdatePositions rewrites the position of each listed stage in one
	// statement batch; callers hand it a full, already-renumbered sibling set.
	UpdatePositions(ctx context.Context, positions map[common.UUID]int) error
	// Delete removes a stage together with its sub-stages.
	Delete(ctx context.Context, id common.UUID) error
}

type TemplateRepository interface {
	Create(ctx context.Context, template Template) (*Template, error)
	GetByID(ctx context.Context, id common.UUID) (*Template, error)
	ListByCompany(ctx context.Context, companyID common.UUID) ([]Template, error)
	Update(ctx context.Context, template Template) (*Template, error)
}
