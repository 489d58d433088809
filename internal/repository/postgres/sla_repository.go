package postgres

import (
	"context"
	"database/sql"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/sla"
)

type SLARepository struct {
	db *sql.DB
}

func NewSLARepository(db *sql.DB) *SLARepository {
	return &SLARepository{db: db}
}

func (r *SLARepository) CreateThreshold(ctx context.Context, t sla.Threshold) (*sla.Threshold, error) {
	t.ID = common.NewUUID()
	t.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO sla_thresholds (id, company_id, stage_name, days, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.CompanyID, t.StageName, t.Days, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "threshold already configured for this stage", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create threshold", err)
	}
	return &t, nil
}

func (r *SLARepository) ListThresholds(ctx context.Context, companyID common.UUID) ([]sla.Threshold, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, company_id, stage_name, days, created_at FROM sla_thresholds WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list thresholds", err)
	}
	defer rows.Close()
	var items []sla.Threshold
	for rows.Next() {
		var t sla.Threshold
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.StageName, &t.Days, &t.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan threshold", err)
		}
		items = append(items, t)
	}
	return items, nil
}

// ListOccupancies joins active enrollments with their current stage and the
// open history interval; entered_at falls back to applied_at for
// enrollments that predate the ledger.
func (r *SLARepository) ListOccupancies(ctx context.Context, companyID common.UUID) ([]sla.Occupancy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT e.id, e.job_id, e.candidate_id, j.recruiter_id, s.id, s.name, COALESCE(h.entered_at, e.applied_at)
		FROM enrollments e
		JOIN jobs j ON j.id = e.job_id
		JOIN pipeline_stages s ON s.id = e.current_stage_id
		LEFT JOIN stage_history h ON h.enrollment_id = e.id AND h.exited_at IS NULL
		WHERE j.company_id = $1 AND j.status = 'open' AND s.role NOT IN ('terminal_reject', 'terminal_hire')`, companyID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list stage occupancies", err)
	}
	defer rows.Close()
	var items []sla.Occupancy
	for rows.Next() {
		var o sla.Occupancy
		if err := rows.Scan(&o.EnrollmentID, &o.JobID, &o.CandidateID, &o.RecruiterID, &o.StageID, &o.StageName, &o.EnteredAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan stage occupancy", err)
		}
		items = append(items, o)
	}
	return items, nil
}

func (r *SLARepository) ListCompanyIDs(ctx context.Context) ([]common.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT company_id FROM jobs WHERE status = 'open'`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list companies", err)
	}
	defer rows.Close()
	var ids []common.UUID
	for rows.Next() {
		var id common.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan company id", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
