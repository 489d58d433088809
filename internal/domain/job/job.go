package job

import (
	"context"
	"encoding/json"
	"time"

	"snapfind/internal/common"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusPaused Status = "paused"
	StatusClosed Status = "closed"
)

// Job owns an ordered set of pipeline stages and an optional auto-rejection
// rule set. RejectionRules is kept as raw JSON; it is managed by external
// CRUD and only parsed at evaluation time.
type Job struct {
	ID             common.UUID     `json:"id"`
	CompanyID      common.UUID     `json:"company_id"`
	RecruiterID    common.UUID     `json:"recruiter_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Status         Status          `json:"status"`
	RejectionRules json.RawMessage `json:"rejection_rules,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, j Job) (*Job, error)
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	ListByCompany(ctx context.Context, companyID common.UUID) ([]Job, error)
}
