package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
)

type EnrollmentRepository struct {
	db *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, job_id, candidate_id, current_stage_id, applied_at, updated_at`

func (r *EnrollmentRepository) Create(ctx context.Context, e candidate.Enrollment) (*candidate.Enrollment, error) {
	e.ID = common.NewUUID()
	now := time.Now().UTC()
	if e.AppliedAt.IsZero() {
		e.AppliedAt = now
	}
	e.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO enrollments (id, job_id, candidate_id, current_stage_id, applied_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.JobID, e.CandidateID, e.CurrentStageID, e.AppliedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "candidate already enrolled in this job", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create enrollment", err)
	}
	return &e, nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id common.UUID) (*candidate.Enrollment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
	var e candidate.Enrollment
	if err := row.Scan(&e.ID, &e.JobID, &e.CandidateID, &e.CurrentStageID, &e.AppliedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "enrollment not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load enrollment", err)
	}
	return &e, nil
}

func (r *EnrollmentRepository) FindByJobAndCandidate(ctx context.Context, jobID, candidateID common.UUID) (*candidate.Enrollment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE job_id = $1 AND candidate_id = $2`, jobID, candidateID)
	var e candidate.Enrollment
	if err := row.Scan(&e.ID, &e.JobID, &e.CandidateID, &e.CurrentStageID, &e.AppliedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "enrollment not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load enrollment", err)
	}
	return &e, nil
}

func (r *EnrollmentRepository) ListByJob(ctx context.Context, jobID common.UUID) ([]candidate.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE job_id = $1 ORDER BY applied_at`, jobID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list enrollments", err)
	}
	defer rows.Close()
	var items []candidate.Enrollment
	for rows.Next() {
		var e candidate.Enrollment
		if err := rows.Scan(&e.ID, &e.JobID, &e.CandidateID, &e.CurrentStageID, &e.AppliedAt, &e.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan enrollment", err)
		}
		items = append(items, e)
	}
	return items, nil
}

func (r *EnrollmentRepository) CountByStages(ctx context.Context, stageIDs []common.UUID) (int, error) {
	if len(stageIDs) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(stageIDs))
	for _, id := range stageIDs {
		ids = append(ids, id.String())
	}
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE current_stage_id = ANY($1)`, pq.Array(ids))
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count stage occupants", err)
	}
	return count, nil
}

// ApplyTransition performs the four transition writes in one transaction.
// The enrollment row is locked first so concurrent transitions on the same
// enrollment serialize and the single-open-interval invariant holds.
func (r *EnrollmentRepository) ApplyTransition(ctx context.Context, t candidate.Transition) (*candidate.Enrollment, *candidate.Activity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var e candidate.Enrollment
	row := tx.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1 FOR UPDATE`, t.EnrollmentID)
	if err := row.Scan(&e.ID, &e.JobID, &e.CandidateID, &e.CurrentStageID, &e.AppliedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, common.NewError(common.CodeNotFound, "enrollment not found", err)
		}
		return nil, nil, common.NewError(common.CodeInternal, "failed to lock enrollment", err)
	}

	// Close the open interval, if any. The new interval starts exactly where
	// the old one ends.
	var openID common.UUID
	var enteredAt time.Time
	err = tx.QueryRowContext(ctx, `SELECT id, entered_at FROM stage_history WHERE enrollment_id = $1 AND exited_at IS NULL`, e.ID).Scan(&openID, &enteredAt)
	switch {
	case err == nil:
		duration := t.OccurredAt.Sub(enteredAt).Hours()
		if _, err := tx.ExecContext(ctx, `UPDATE stage_history SET exited_at = $1, duration_hours = $2 WHERE id = $3`, t.OccurredAt, duration, openID); err != nil {
			return nil, nil, common.NewError(common.CodeInternal, "failed to close stage interval", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// No open interval; the new one simply starts now.
	default:
		return nil, nil, common.NewError(common.CodeInternal, "failed to find open stage interval", err)
	}

	e.CurrentStageID = t.ToStageID
	e.UpdatedAt = t.OccurredAt
	if _, err := tx.ExecContext(ctx, `UPDATE enrollments SET current_stage_id = $1, updated_at = $2 WHERE id = $3`, e.CurrentStageID, e.UpdatedAt, e.ID); err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to update enrollment stage", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO stage_history (id, enrollment_id, stage_id, stage_name, entered_at, comment, moved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		common.NewUUID(), e.ID, t.ToStageID, t.ToStageName, t.OccurredAt, t.Comment, t.MovedBy); err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to open stage interval", err)
	}

	activity := t.Activity
	activity.ID = common.NewUUID()
	activity.CreatedAt = t.OccurredAt
	metadata, err := json.Marshal(activity.Metadata)
	if err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to encode activity metadata", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO candidate_activities (id, candidate_id, enrollment_id, activity_type, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		activity.ID, activity.CandidateID, nullableUUID(activity.EnrollmentID), activity.Type, activity.Description, metadata, activity.CreatedAt); err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to append activity", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to commit transition", err)
	}
	return &e, &activity, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
