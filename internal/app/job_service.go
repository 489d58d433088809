package app

import (
	"context"

	"snapfind/internal/common"
	"snapfind/internal/domain/pipeline"

	jobdomain "snapfind/internal/domain/job"
)

type JobService struct {
	jobs     jobdomain.Repository
	pipeline *PipelineService
}

func NewJobService(jobs jobdomain.Repository, pipelineService *PipelineService) *JobService {
	return &JobService{jobs: jobs, pipeline: pipelineService}
}

type CreateJobResult struct {
	Job    *jobdomain.Job   `json:"job"`
	Stages []pipeline.Stage `json:"stages"`
}

// Create persists the job and seeds the default pipeline so every job is
// immediately enrollable.
func (s *JobService) Create(ctx context.Context, j jobdomain.Job) (*CreateJobResult, error) {
	if j.Title == "" {
		return nil, common.NewError(common.CodeValidation, "title is required", nil)
	}
	if j.CompanyID.IsZero() {
		return nil, common.NewError(common.CodeValidation, "company id is required", nil)
	}
	created, err := s.jobs.Create(ctx, j)
	if err != nil {
		return nil, err
	}
	stages, err := s.pipeline.SeedDefaults(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	return &CreateJobResult{Job: created, Stages: stages}, nil
}

func (s *JobService) Get(ctx context.Context, id common.UUID) (*jobdomain.Job, error) {
	return s.jobs.GetByID(ctx, id)
}
