package app

import (
	"context"
	"sort"
	"strings"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
	"snapfind/internal/domain/job"
	"snapfind/internal/domain/pipeline"
)

type PipelineService struct {
	stages      pipeline.Repository
	templates   pipeline.TemplateRepository
	jobs        job.Repository
	enrollments candidate.Repository
}

func NewPipelineService(stages pipeline.Repository, templates pipeline.TemplateRepository, jobs job.Repository, enrollments candidate.Repository) *PipelineService {
	return &PipelineService{stages: stages, templates: templates, jobs: jobs, enrollments: enrollments}
}

func (s *PipelineService) ListStages(ctx context.Context, jobID common.UUID) ([]pipeline.Stage, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.stages.ListByJob(ctx, jobID)
}

// InsertStage places a new stage at position, shifting siblings at or after
// it by one so sibling positions stay contiguous and unique.
func (s *PipelineService) InsertStage(ctx context.Context, jobID common.UUID, name string, position int, role pipeline.StageRole, parentID *common.UUID) (*pipeline.Stage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("invalid stage", map[string]string{"name": "name is required"})
	}
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.stages.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.JobID != jobID {
			return nil, common.NewValidationError("invalid parent stage", map[string]string{"parentId": "parent stage belongs to another job"})
		}
		if !parent.IsTopLevel() {
			return nil, common.NewValidationError("invalid parent stage", map[string]string{"parentId": "sub-stages nest only one level deep"})
		}
	}

	siblings, err := s.siblings(ctx, jobID, parentID)
	if err != nil {
		return nil, err
	}
	if position < 0 {
		position = 0
	}
	if position > len(siblings) {
		position = len(siblings)
	}

	shifted := make(map[common.UUID]int)
	for _, sibling := range siblings {
		if sibling.Position >= position {
			shifted[sibling.ID] = sibling.Position + 1
		}
	}
	if err := s.stages.UpdatePositions(ctx, shifted); err != nil {
		return nil, err
	}

	return s.stages.Create(ctx, pipeline.Stage{
		JobID:    jobID,
		Name:     name,
		Position: position,
		Role:     pipeline.NormalizeRole(role, name),
		ParentID: parentID,
	})
}

// ReorderStage moves a stage to newPosition among its siblings and
// renumbers the whole sibling set to be contiguous from 0.
func (s *PipelineService) ReorderStage(ctx context.Context, stageID common.UUID, newPosition int) error {
	stage, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		return err
	}
	siblings, err := s.siblings(ctx, stage.JobID, stage.ParentID)
	if err != nil {
		return err
	}

	ordered := make([]pipeline.Stage, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling.ID != stageID {
			ordered = append(ordered, sibling)
		}
	}
	if newPosition < 0 {
		newPosition = 0
	}
	if newPosition > len(ordered) {
		newPosition = len(ordered)
	}
	ordered = append(ordered[:newPosition], append([]pipeline.Stage{*stage}, ordered[newPosition:]...)...)

	positions := make(map[common.UUID]int, len(ordered))
	for i, sibling := range ordered {
		positions[sibling.ID] = i
	}
	return s.stages.UpdatePositions(ctx, positions)
}

func (s *PipelineService) RenameStage(ctx context.Context, stageID common.UUID, name string) (*pipeline.Stage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("invalid stage", map[string]string{"name": "name is required"})
	}
	return s.stages.UpdateName(ctx, stageID, name)
}

// DeleteStage removes a stage and its sub-stages. Deleting an occupied
// stage is blocked: both cascade options would corrupt the ledger, and the
// caller can bulk-move occupants first.
func (s *PipelineService) DeleteStage(ctx context.Context, stageID common.UUID) error {
	stage, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		return err
	}
	all, err := s.stages.ListByJob(ctx, stage.JobID)
	if err != nil {
		return err
	}
	affected := []common.UUID{stage.ID}
	for _, other := range all {
		if other.ParentID != nil && *other.ParentID == stage.ID {
			affected = append(affected, other.ID)
		}
	}
	occupants, err := s.enrollments.CountByStages(ctx, affected)
	if err != nil {
		return err
	}
	if occupants > 0 {
		return common.NewError(common.CodeConflict, "stage has active candidates and cannot be deleted", nil)
	}
	if err := s.stages.Delete(ctx, stageID); err != nil {
		return err
	}

	// Renumber the remaining siblings so positions stay contiguous.
	siblings, err := s.siblings(ctx, stage.JobID, stage.ParentID)
	if err != nil {
		return err
	}
	positions := make(map[common.UUID]int, len(siblings))
	for i, sibling := range siblings {
		positions[sibling.ID] = i
	}
	return s.stages.UpdatePositions(ctx, positions)
}

// ImportFromJob snapshots a job's stage tree into a named template. The
// template holds value copies, so later edits to either side never leak
// into the other.
func (s *PipelineService) ImportFromJob(ctx context.Context, sourceJobID common.UUID, name, description string, createdBy common.UUID) (*pipeline.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("invalid template", map[string]string{"name": "name is required"})
	}
	source, err := s.jobs.GetByID(ctx, sourceJobID)
	if err != nil {
		return nil, err
	}
	stages, err := s.stages.ListByJob(ctx, sourceJobID)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, common.NewValidationError("invalid template", map[string]string{"sourceJobId": "source job has no pipeline stages"})
	}
	return s.templates.Create(ctx, pipeline.Template{
		CompanyID:   source.CompanyID,
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		Stages:      pipeline.CopyTree(stages),
	})
}

func (s *PipelineService) GetTemplate(ctx context.Context, id common.UUID) (*pipeline.Template, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *PipelineService) UpdateTemplate(ctx context.Context, template pipeline.Template) (*pipeline.Template, error) {
	if strings.TrimSpace(template.Name) == "" {
		return nil, common.NewValidationError("invalid template", map[string]string{"name": "name is required"})
	}
	if _, err := s.templates.GetByID(ctx, template.ID); err != nil {
		return nil, err
	}
	return s.templates.Update(ctx, template)
}

// ApplyTemplate materializes a template's stage tree as fresh stage rows on
// a job that has no pipeline yet.
func (s *PipelineService) ApplyTemplate(ctx context.Context, templateID, jobID common.UUID) ([]pipeline.Stage, error) {
	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	existing, err := s.stages.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, common.NewError(common.CodeConflict, "job already has a pipeline", nil)
	}
	return s.materialize(ctx, jobID, template.Stages, false)
}

// SeedDefaults creates the built-in pipeline on a freshly created job.
func (s *PipelineService) SeedDefaults(ctx context.Context, jobID common.UUID) ([]pipeline.Stage, error) {
	stages, err := pipeline.DefaultStages()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load default pipeline", err)
	}
	return s.materialize(ctx, jobID, stages, true)
}

func (s *PipelineService) materialize(ctx context.Context, jobID common.UUID, templateStages []pipeline.TemplateStage, isDefault bool) ([]pipeline.Stage, error) {
	var created []pipeline.Stage
	for _, ts := range templateStages {
		parent, err := s.stages.Create(ctx, pipeline.Stage{
			JobID:       jobID,
			Name:        ts.Name,
			Position:    ts.Position,
			Role:        ts.Role,
			IsDefault:   isDefault,
			IsMandatory: ts.IsMandatory,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, *parent)
		for _, sub := range ts.SubStages {
			parentID := parent.ID
			child, err := s.stages.Create(ctx, pipeline.Stage{
				JobID:       jobID,
				Name:        sub.Name,
				Position:    sub.Position,
				Role:        sub.Role,
				IsDefault:   isDefault,
				IsMandatory: sub.IsMandatory,
				ParentID:    &parentID,
			})
			if err != nil {
				return nil, err
			}
			created = append(created, *child)
		}
	}
	return created, nil
}

func (s *PipelineService) siblings(ctx context.Context, jobID common.UUID, parentID *common.UUID) ([]pipeline.Stage, error) {
	all, err := s.stages.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	var siblings []pipeline.Stage
	for _, stage := range all {
		if sameParent(stage.ParentID, parentID) {
			siblings = append(siblings, stage)
		}
	}
	sort.Slice(siblings, func(i, j int) bool { return siblings[i].Position < siblings[j].Position })
	return siblings, nil
}

func sameParent(a, b *common.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
