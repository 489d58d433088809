package postgres

import (
	"context"
	"database/sql"
	"errors"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const historyColumns = `id, enrollment_id, stage_id, stage_name, entered_at, exited_at, duration_hours, comment, moved_by`

func (r *HistoryRepository) Open(ctx context.Context, entry candidate.HistoryEntry) (*candidate.HistoryEntry, error) {
	entry.ID = common.NewUUID()
	entry.ExitedAt = nil
	entry.DurationHours = nil
	_, err := r.db.ExecContext(ctx, `INSERT INTO stage_history (id, enrollment_id, stage_id, stage_name, entered_at, comment, moved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.EnrollmentID, entry.StageID, entry.StageName, entry.EnteredAt, entry.Comment, entry.MovedBy)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to open stage interval", err)
	}
	return &entry, nil
}

func (r *HistoryRepository) FindOpen(ctx context.Context, enrollmentID common.UUID) (*candidate.HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM stage_history WHERE enrollment_id = $1 AND exited_at IS NULL`, enrollmentID)
	entry, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "no open stage interval", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load open stage interval", err)
	}
	return entry, nil
}

func (r *HistoryRepository) ListByEnrollment(ctx context.Context, enrollmentID common.UUID) ([]candidate.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM stage_history WHERE enrollment_id = $1 ORDER BY entered_at`, enrollmentID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list stage history", err)
	}
	defer rows.Close()
	var items []candidate.HistoryEntry
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan stage history", err)
		}
		items = append(items, *entry)
	}
	return items, nil
}

func scanHistory(row rowScanner) (*candidate.HistoryEntry, error) {
	var entry candidate.HistoryEntry
	var exitedAt sql.NullTime
	var duration sql.NullFloat64
	if err := row.Scan(&entry.ID, &entry.EnrollmentID, &entry.StageID, &entry.StageName, &entry.EnteredAt, &exitedAt, &duration, &entry.Comment, &entry.MovedBy); err != nil {
		return nil, err
	}
	if exitedAt.Valid {
		t := exitedAt.Time
		entry.ExitedAt = &t
	}
	if duration.Valid {
		d := duration.Float64
		entry.DurationHours = &d
	}
	return &entry, nil
}
