package app

import (
	"context"
	"fmt"

	"snapfind/internal/common"
	"snapfind/internal/domain/pipeline"
	"snapfind/internal/domain/rules"
	"snapfind/internal/observability"

	jobdomain "snapfind/internal/domain/job"
)

// SystemActor marks transitions performed by the engine itself rather than
// a person.
var SystemActor = common.UUID("00000000-0000-0000-0000-000000000000")

// AutoRejectService evaluates a job's rejection rules at application time.
// It never fails the enrollment: any internal error is logged and reported
// as "not rejected".
type AutoRejectService struct {
	jobs        jobdomain.Repository
	stages      pipeline.Repository
	transitions *TransitionService
	logger      *observability.Logger
}

func NewAutoRejectService(jobs jobdomain.Repository, stages pipeline.Repository, transitions *TransitionService, logger *observability.Logger) *AutoRejectService {
	return &AutoRejectService{jobs: jobs, stages: stages, transitions: transitions, logger: logger}
}

// ProcessApplication is non-retroactive: it only acts while the enrollment
// still sits in the pipeline's entry stage, so candidates already advanced
// are never swept up by a later rule change.
func (s *AutoRejectService) ProcessApplication(ctx context.Context, enrollmentID, candidateID common.UUID, attrs rules.Attributes, jobID common.UUID) bool {
	rejected, err := s.process(ctx, enrollmentID, attrs, jobID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("auto-rejection skipped for candidate %s: %v", candidateID, err))
		return false
	}
	return rejected
}

func (s *AutoRejectService) process(ctx context.Context, enrollmentID common.UUID, attrs rules.Attributes, jobID common.UUID) (bool, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	ruleSet, err := rules.ParseRuleSet(j.RejectionRules)
	if err != nil {
		return false, err
	}
	verdict, err := rules.Evaluate(attrs, ruleSet)
	if err != nil {
		return false, err
	}
	if !verdict.ShouldReject {
		return false, nil
	}

	stages, err := s.stages.ListByJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	var entryID, rejectID common.UUID
	for _, stage := range stages {
		switch stage.Role {
		case pipeline.RoleEntry:
			entryID = stage.ID
		case pipeline.RoleTerminalReject:
			rejectID = stage.ID
		}
	}
	if rejectID.IsZero() {
		return false, common.NewError(common.CodeValidation, "job pipeline has no rejection stage", nil)
	}

	enrollment, err := s.transitions.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return false, err
	}
	if enrollment.CurrentStageID != entryID {
		// Already advanced by a recruiter; rules never apply retroactively.
		return false, nil
	}

	metadata := map[string]any{"autoRejected": true}
	if verdict.Triggered != nil {
		metadata["triggeredRule"] = verdict.Triggered
	}
	_, _, err = s.transitions.ChangeStage(ctx, ChangeStageParams{
		EnrollmentID:    enrollmentID,
		NewStageID:      rejectID,
		RejectionReason: verdict.Reason,
		MovedBy:         SystemActor,
		Metadata:        metadata,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
