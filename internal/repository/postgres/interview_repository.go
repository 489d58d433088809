package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"snapfind/internal/common"
	"snapfind/internal/domain/interview"
)

type InterviewRepository struct {
	db *sql.DB
}

func NewInterviewRepository(db *sql.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

func (r *InterviewRepository) Create(ctx context.Context, iv interview.Interview) (*interview.Interview, error) {
	iv.ID = common.NewUUID()
	if iv.ScheduledAt.IsZero() {
		iv.ScheduledAt = time.Now().UTC()
	}
	panelists := make([]string, 0, len(iv.PanelistIDs))
	for _, id := range iv.PanelistIDs {
		panelists = append(panelists, id.String())
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO interviews (id, enrollment_id, job_id, scheduled_by, panelist_ids, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		iv.ID, iv.EnrollmentID, iv.JobID, iv.ScheduledBy, pq.Array(panelists), iv.ScheduledAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create interview", err)
	}
	return &iv, nil
}

func (r *InterviewRepository) GetByID(ctx context.Context, id common.UUID) (*interview.Interview, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, enrollment_id, job_id, scheduled_by, panelist_ids, scheduled_at FROM interviews WHERE id = $1`, id)
	var iv interview.Interview
	var panelists []string
	if err := row.Scan(&iv.ID, &iv.EnrollmentID, &iv.JobID, &iv.ScheduledBy, pq.Array(&panelists), &iv.ScheduledAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "interview not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load interview", err)
	}
	for _, p := range panelists {
		iv.PanelistIDs = append(iv.PanelistIDs, common.UUID(p))
	}
	return &iv, nil
}

func (r *InterviewRepository) CreateFeedback(ctx context.Context, f interview.Feedback) (*interview.Feedback, error) {
	f.ID = common.NewUUID()
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO interview_feedback (id, interview_id, panelist_id, recommendation, notes, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.InterviewID, f.PanelistID, f.Recommendation, f.Notes, f.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "feedback already submitted for this interview", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create feedback", err)
	}
	return &f, nil
}

func (r *InterviewRepository) ListFeedback(ctx context.Context, interviewID common.UUID) ([]interview.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, interview_id, panelist_id, recommendation, notes, submitted_at FROM interview_feedback WHERE interview_id = $1 ORDER BY submitted_at`, interviewID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list feedback", err)
	}
	defer rows.Close()
	var items []interview.Feedback
	for rows.Next() {
		var f interview.Feedback
		if err := rows.Scan(&f.ID, &f.InterviewID, &f.PanelistID, &f.Recommendation, &f.Notes, &f.SubmittedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan feedback", err)
		}
		items = append(items, f)
	}
	return items, nil
}
