package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/pipeline"
)

type StageRepository struct {
	db *sql.DB
}

func NewStageRepository(db *sql.DB) *StageRepository {
	return &StageRepository{db: db}
}

const stageColumns = `id, job_id, name, position, role, is_default, is_mandatory, parent_id, created_at, updated_at`

func (r *StageRepository) Create(ctx context.Context, stage pipeline.Stage) (*pipeline.Stage, error) {
	if stage.ID.IsZero() {
		stage.ID = common.NewUUID()
	}
	now := time.Now().UTC()
	stage.CreatedAt = now
	stage.UpdatedAt = now
	stage.Role = pipeline.NormalizeRole(stage.Role, stage.Name)
	_, err := r.db.ExecContext(ctx, `INSERT INTO pipeline_stages (id, job_id, name, position, role, is_default, is_mandatory, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		stage.ID, stage.JobID, stage.Name, stage.Position, stage.Role, stage.IsDefault, stage.IsMandatory, nullableUUID(stage.ParentID), stage.CreatedAt, stage.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create stage", err)
	}
	return &stage, nil
}

func (r *StageRepository) GetByID(ctx context.Context, id common.UUID) (*pipeline.Stage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+stageColumns+` FROM pipeline_stages WHERE id = $1`, id)
	stage, err := scanStage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "stage not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load stage", err)
	}
	return stage, nil
}

func (r *StageRepository) ListByJob(ctx context.Context, jobID common.UUID) ([]pipeline.Stage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+stageColumns+` FROM pipeline_stages WHERE job_id = $1 ORDER BY parent_id NULLS FIRST, position`, jobID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list stages", err)
	}
	defer rows.Close()
	var items []pipeline.Stage
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan stage", err)
		}
		items = append(items, *stage)
	}
	return items, nil
}

func (r *StageRepository) UpdateName(ctx context.Context, id common.UUID, name string) (*pipeline.Stage, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE pipeline_stages SET name = $1, updated_at = $2 WHERE id = $3`, name, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to rename stage", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "stage not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *StageRepository) UpdatePositions(ctx context.Context, positions map[common.UUID]int) error {
	if len(positions) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for id, position := range positions {
		if _, err := tx.ExecContext(ctx, `UPDATE pipeline_stages SET position = $1, updated_at = $2 WHERE id = $3`, position, now, id); err != nil {
			return common.NewError(common.CodeInternal, "failed to update stage position", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return common.NewError(common.CodeInternal, "failed to commit position updates", err)
	}
	return nil
}

func (r *StageRepository) Delete(ctx context.Context, id common.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pipeline_stages WHERE parent_id = $1`, id); err != nil {
		return common.NewError(common.CodeInternal, "failed to delete sub-stages", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM pipeline_stages WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete stage", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "stage not found", sql.ErrNoRows)
	}
	if err := tx.Commit(); err != nil {
		return common.NewError(common.CodeInternal, "failed to commit stage delete", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStage(row rowScanner) (*pipeline.Stage, error) {
	var stage pipeline.Stage
	var parentID sql.NullString
	if err := row.Scan(&stage.ID, &stage.JobID, &stage.Name, &stage.Position, &stage.Role, &stage.IsDefault, &stage.IsMandatory, &parentID, &stage.CreatedAt, &stage.UpdatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		parent := common.UUID(parentID.String)
		stage.ParentID = &parent
	}
	stage.Role = pipeline.NormalizeRole(stage.Role, stage.Name)
	return &stage, nil
}

func nullableUUID(id *common.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
