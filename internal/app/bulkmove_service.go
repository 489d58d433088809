package app

import (
	"context"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
	"snapfind/internal/domain/pipeline"

	jobdomain "snapfind/internal/domain/job"
)

// BulkMoveService applies the transition engine across a candidate set.
// Each candidate's transition is its own transaction; one failure never
// touches another candidate's committed move.
type BulkMoveService struct {
	jobs        jobdomain.Repository
	stages      pipeline.Repository
	enrollments candidate.Repository
	transitions *TransitionService
}

func NewBulkMoveService(jobs jobdomain.Repository, stages pipeline.Repository, enrollments candidate.Repository, transitions *TransitionService) *BulkMoveService {
	return &BulkMoveService{jobs: jobs, stages: stages, enrollments: enrollments, transitions: transitions}
}

type BulkMoveParams struct {
	CandidateIDs    []common.UUID
	TargetStageID   common.UUID
	JobID           common.UUID
	MovedBy         common.UUID
	Comment         string
	RejectionReason string
}

// BulkMove returns an error only for systemic problems (unknown job or a
// target stage outside the job); per-candidate failures land in Failures.
func (s *BulkMoveService) BulkMove(ctx context.Context, p BulkMoveParams) (*candidate.BulkMoveResult, error) {
	if len(p.CandidateIDs) == 0 {
		return nil, common.NewValidationError("invalid bulk move", map[string]string{"candidateIds": "at least one candidate is required"})
	}
	if _, err := s.jobs.GetByID(ctx, p.JobID); err != nil {
		return nil, err
	}
	target, err := s.stages.GetByID(ctx, p.TargetStageID)
	if err != nil {
		return nil, err
	}
	if target.JobID != p.JobID {
		return nil, common.NewValidationError("invalid bulk move", map[string]string{"targetStageId": "stage does not belong to this job"})
	}

	result := &candidate.BulkMoveResult{}
	for _, candidateID := range p.CandidateIDs {
		enrollment, err := s.enrollments.FindByJobAndCandidate(ctx, p.JobID, candidateID)
		if err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, candidate.BulkMoveFailure{CandidateID: candidateID, Reason: err.Error()})
			continue
		}
		if _, _, err := s.transitions.ChangeStage(ctx, ChangeStageParams{
			EnrollmentID:    enrollment.ID,
			NewStageID:      p.TargetStageID,
			RejectionReason: p.RejectionReason,
			Comment:         p.Comment,
			MovedBy:         p.MovedBy,
			Metadata:        map[string]any{"bulkMove": true},
		}); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, candidate.BulkMoveFailure{CandidateID: candidateID, Reason: err.Error()})
			continue
		}
		result.MovedCount++
	}
	return result, nil
}
