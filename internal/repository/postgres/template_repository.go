package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/pipeline"
)

// TemplateRepository persists the stage tree of a template as a JSON value,
// so templates are stored as copies with no row-level ties to any job.
type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, template pipeline.Template) (*pipeline.Template, error) {
	template.ID = common.NewUUID()
	template.CreatedAt = time.Now().UTC()
	stages, err := json.Marshal(template.Stages)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode template stages", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO pipeline_templates (id, company_id, name, description, created_by, stages, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		template.ID, template.CompanyID, template.Name, template.Description, template.CreatedBy, stages, template.CreatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create template", err)
	}
	return &template, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id common.UUID) (*pipeline.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, company_id, name, description, created_by, stages, created_at FROM pipeline_templates WHERE id = $1`, id)
	return scanTemplate(row)
}

func (r *TemplateRepository) ListByCompany(ctx context.Context, companyID common.UUID) ([]pipeline.Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, company_id, name, description, created_by, stages, created_at FROM pipeline_templates WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list templates", err)
	}
	defer rows.Close()
	var items []pipeline.Template
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *template)
	}
	return items, nil
}

func (r *TemplateRepository) Update(ctx context.Context, template pipeline.Template) (*pipeline.Template, error) {
	stages, err := json.Marshal(template.Stages)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode template stages", err)
	}
	result, err := r.db.ExecContext(ctx, `UPDATE pipeline_templates SET name = $1, description = $2, stages = $3 WHERE id = $4`,
		template.Name, template.Description, stages, template.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update template", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "template not found", sql.ErrNoRows)
	}
	return &template, nil
}

func scanTemplate(row rowScanner) (*pipeline.Template, error) {
	var template pipeline.Template
	var stages []byte
	if err := row.Scan(&template.ID, &template.CompanyID, &template.Name, &template.Description, &template.CreatedBy, &stages, &template.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "template not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load template", err)
	}
	if err := json.Unmarshal(stages, &template.Stages); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode template stages", err)
	}
	return &template, nil
}
