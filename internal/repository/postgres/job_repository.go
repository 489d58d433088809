package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/job"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	j.ID = common.NewUUID()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	if j.Status == "" {
		j.Status = job.StatusOpen
	}
	rules := []byte(j.RejectionRules)
	if len(rules) == 0 {
		rules = []byte("null")
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (id, company_id, recruiter_id, title, description, status, rejection_rules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		j.ID, j.CompanyID, j.RecruiterID, j.Title, j.Description, j.Status, rules, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job", err)
	}
	return &j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, company_id, recruiter_id, title, description, status, rejection_rules, created_at, updated_at FROM jobs WHERE id = $1`, id)
	var j job.Job
	var rules sql.NullString
	if err := row.Scan(&j.ID, &j.CompanyID, &j.RecruiterID, &j.Title, &j.Description, &j.Status, &rules, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	if rules.Valid {
		j.RejectionRules = []byte(rules.String)
	}
	return &j, nil
}

func (r *JobRepository) ListByCompany(ctx context.Context, companyID common.UUID) ([]job.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, company_id, recruiter_id, title, description, status, rejection_rules, created_at, updated_at FROM jobs WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	var items []job.Job
	for rows.Next() {
		var j job.Job
		var rules sql.NullString
		if err := rows.Scan(&j.ID, &j.CompanyID, &j.RecruiterID, &j.Title, &j.Description, &j.Status, &rules, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan job", err)
		}
		if rules.Valid {
			j.RejectionRules = []byte(rules.String)
		}
		items = append(items, j)
	}
	return items, nil
}
