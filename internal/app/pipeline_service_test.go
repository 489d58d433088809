package app

import (
	"context"
	"sort"
	"testing"

	"snapfind/internal/common"
	"snapfind/internal/domain/pipeline"

	jobdomain "snapfind/internal/domain/job"
)

func topLevelByPosition(t *testing.T, stages *fakeStageRepo, jobID common.UUID) []pipeline.Stage {
	t.Helper()
	all, err := stages.ListByJob(context.Background(), jobID)
	if err != nil {
		t.Fatalf("list stages: %v", err)
	}
	var top []pipeline.Stage
	for _, stage := range all {
		if stage.IsTopLevel() {
			top = append(top, stage)
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Position < top[j].Position })
	return top
}

func TestPipelineServiceInsertStage_ShiftsSiblings(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	ledger := newFakeLedger()
	fx := seedPipeline(t, jobs, stages, nil)

	service := NewPipelineService(stages, newFakeTemplateRepo(), jobs, ledger)

	inserted, err := service.InsertStage(context.Background(), fx.job.ID, "Take-home", 1, pipeline.RoleStandard, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if inserted.Position != 1 {
		t.Fatalf("expected position 1, got %d", inserted.Position)
	}

	top := topLevelByPosition(t, stages, fx.job.ID)
	if len(top) != 6 {
		t.Fatalf("expected 6 top-level stages, got %d", len(top))
	}
	for i, stage := range top {
		if stage.Position != i {
			t.Fatalf("positions must stay contiguous, stage %q at %d expected %d", stage.Name, stage.Position, i)
		}
	}
	if top[1].Name != "Take-home" || top[2].Name != "Screening" {
		t.Fatalf("siblings at or after the slot must shift, got %q then %q", top[1].Name, top[2].Name)
	}
}

func TestPipelineServiceInsertStage_ClampsPosition(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	fx := seedPipeline(t, jobs, stages, nil)

	service := NewPipelineService(stages, newFakeTemplateRepo(), jobs, newFakeLedger())

	inserted, err := service.InsertStage(context.Background(), fx.job.ID, "Debrief", 99, pipeline.RoleStandard, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if inserted.Position != 5 {
		t.Fatalf("expected position clamped to 5, got %d", inserted.Position)
	}

	if _, err := service.InsertStage(context.Background(), fx.job.ID, "   ", 0, pipeline.RoleStandard, nil); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestPipelineServiceReorderStage_RenumbersFromZero(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	fx := seedPipeline(t, jobs, stages, nil)

	service := NewPipelineService(stages, newFakeTemplateRepo(), jobs, newFakeLedger())

	if err := service.ReorderStage(context.Background(), fx.offer.ID, 0); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	top := topLevelByPosition(t, stages, fx.job.ID)
	if top[0].Name != "Offer" || top[1].Name != "Applied" {
		t.Fatalf("expected Offer first then Applied, got %q then %q", top[0].Name, top[1].Name)
	}
	for i, stage := range top {
		if stage.Position != i {
			t.Fatalf("positions must be contiguous from 0, stage %q at %d", stage.Name, stage.Position)
		}
	}
}

func TestPipelineServiceDeleteStage_BlockedWhenOccupied(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	ledger := newFakeLedger()
	fx := seedPipeline(t, jobs, stages, nil)
	enrollment := enroll(t, ledger, fx)

	service := NewPipelineService(stages, newFakeTemplateRepo(), jobs, ledger)

	err := service.DeleteStage(context.Background(), fx.applied.ID)
	if !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict for occupied stage, got %v", err)
	}
	if _, err := stages.GetByID(context.Background(), fx.applied.ID); err != nil {
		t.Fatal("blocked delete must leave the stage in place")
	}

	// Move the only occupant out, then the delete goes through and the
	// remaining siblings renumber.
	transitions := NewTransitionService(ledger, stages, ledger)
	if _, _, err := transitions.ChangeStage(context.Background(), ChangeStageParams{
		EnrollmentID: enrollment.ID,
		NewStageID:   fx.screen.ID,
		MovedBy:      common.NewUUID(),
	}); err != nil {
		t.Fatalf("move occupant: %v", err)
	}
	if err := service.DeleteStage(context.Background(), fx.applied.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	top := topLevelByPosition(t, stages, fx.job.ID)
	if len(top) != 4 {
		t.Fatalf("expected 4 stages after delete, got %d", len(top))
	}
	for i, stage := range top {
		if stage.Position != i {
			t.Fatalf("positions must renumber after delete, stage %q at %d", stage.Name, stage.Position)
		}
	}
}

func TestPipelineServiceDeleteStage_RemovesSubStages(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	fx := seedPipeline(t, jobs, stages, nil)

	service := NewPipelineService(stages, newFakeTemplateRepo(), jobs, newFakeLedger())

	sub, err := service.InsertStage(context.Background(), fx.job.ID, "Phone Screen", 0, pipeline.RoleStandard, &fx.screen.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := service.DeleteStage(context.Background(), fx.screen.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := stages.GetByID(context.Background(), sub.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("sub-stage should be gone with its parent, got %v", err)
	}
}

func TestPipelineServiceImportFromJob_SnapshotIsIndependent(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	templates := newFakeTemplateRepo()
	fx := seedPipeline(t, jobs, stages, nil)

	service := NewPipelineService(stages, templates, jobs, newFakeLedger())

	creator := common.NewUUID()
	template, err := service.ImportFromJob(context.Background(), fx.job.ID, "Engineering default", "standard flow", creator)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if template.CompanyID != fx.job.CompanyID || template.CreatedBy != creator {
		t.Fatalf("template should record owner and creator, got %+v", template)
	}
	if len(template.Stages) != 5 {
		t.Fatalf("expected 5 top-level template stages, got %d", len(template.Stages))
	}

	// Renaming the live stage must not leak into the stored snapshot.
	if _, err := service.RenameStage(context.Background(), fx.screen.ID, "Phone Round"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	stored, err := service.GetTemplate(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if stored.Stages[1].Name != "Screening" {
		t.Fatalf("template snapshot must be independent of the source job, got %q", stored.Stages[1].Name)
	}
}

func TestPipelineServiceApplyTemplate_RequiresEmptyPipeline(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	templates := newFakeTemplateRepo()
	fx := seedPipeline(t, jobs, stages, nil)

	service := NewPipelineService(stages, templates, jobs, newFakeLedger())

	template, err := service.ImportFromJob(context.Background(), fx.job.ID, "Copy", "", common.NewUUID())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if _, err := service.ApplyTemplate(context.Background(), template.ID, fx.job.ID); !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict applying onto an existing pipeline, got %v", err)
	}

	fresh, err := jobs.Create(context.Background(), jobdomain.Job{CompanyID: fx.job.CompanyID, RecruiterID: fx.job.RecruiterID, Title: "Frontend Engineer"})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	created, err := service.ApplyTemplate(context.Background(), template.ID, fresh.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(created) != 5 {
		t.Fatalf("expected 5 materialized stages, got %d", len(created))
	}
	for _, stage := range created {
		if stage.JobID != fresh.ID {
			t.Fatalf("materialized stage should belong to the new job, got %s", stage.JobID)
		}
		if stage.IsDefault {
			t.Fatal("template-applied stages are not default stages")
		}
	}
}

func TestPipelineServiceSeedDefaults(t *testing.T) {
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	fx := seedPipeline(t, jobs, stages, nil)

	fresh, err := jobs.Create(context.Background(), jobdomain.Job{CompanyID: fx.job.CompanyID, RecruiterID: fx.job.RecruiterID, Title: "Platform Engineer"})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}

	service := NewPipelineService(stages, newFakeTemplateRepo(), jobs, newFakeLedger())
	created, err := service.SeedDefaults(context.Background(), fresh.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	var entry, hire, reject int
	for _, stage := range created {
		if !stage.IsDefault {
			t.Fatalf("seeded stage %q should be marked default", stage.Name)
		}
		switch stage.Role {
		case pipeline.RoleEntry:
			entry++
		case pipeline.RoleTerminalHire:
			hire++
		case pipeline.RoleTerminalReject:
			reject++
		}
	}
	if entry != 1 || hire != 1 || reject != 1 {
		t.Fatalf("default pipeline needs one entry, one hire, one reject stage, got %d/%d/%d", entry, hire, reject)
	}
}
