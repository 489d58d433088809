package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
)

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity candidate.Activity) (*candidate.Activity, error) {
	activity.ID = common.NewUUID()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	metadata, err := json.Marshal(activity.Metadata)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode activity metadata", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO candidate_activities (id, candidate_id, enrollment_id, activity_type, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		activity.ID, activity.CandidateID, nullableUUID(activity.EnrollmentID), activity.Type, activity.Description, metadata, activity.CreatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to append activity", err)
	}
	return &activity, nil
}

func (r *ActivityRepository) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]candidate.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, candidate_id, enrollment_id, activity_type, description, metadata, created_at
		FROM candidate_activities WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list activities", err)
	}
	defer rows.Close()
	var items []candidate.Activity
	for rows.Next() {
		var activity candidate.Activity
		var enrollmentID sql.NullString
		var metadata []byte
		if err := rows.Scan(&activity.ID, &activity.CandidateID, &enrollmentID, &activity.Type, &activity.Description, &metadata, &activity.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan activity", err)
		}
		if enrollmentID.Valid {
			id := common.UUID(enrollmentID.String)
			activity.EnrollmentID = &id
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &activity.Metadata); err != nil {
				return nil, common.NewError(common.CodeInternal, "failed to decode activity metadata", err)
			}
		}
		items = append(items, activity)
	}
	return items, nil
}
