package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
	"snapfind/internal/domain/pipeline"
)

// TransitionService is the single primitive that moves a candidate between
// stages. Every caller (manual move, bulk move, auto-rejection, feedback
// auto-advance) goes through ChangeStage; nothing else writes the ledger.
type TransitionService struct {
	enrollments candidate.Repository
	stages      pipeline.Repository
	store       candidate.TransitionStore
	now         func() time.Time
}

func NewTransitionService(enrollments candidate.Repository, stages pipeline.Repository, store candidate.TransitionStore) *TransitionService {
	return &TransitionService{
		enrollments: enrollments,
		stages:      stages,
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type ChangeStageParams struct {
	EnrollmentID    common.UUID
	NewStageID      common.UUID
	RejectionReason string
	Comment         string
	MovedBy         common.UUID
	// Metadata is merged into the stage_change activity metadata; callers
	// use it to tag automated moves.
	Metadata map[string]any
}

func (s *TransitionService) ChangeStage(ctx context.Context, p ChangeStageParams) (*candidate.Enrollment, *candidate.Activity, error) {
	enrollment, err := s.enrollments.GetByID(ctx, p.EnrollmentID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.stages.GetByID(ctx, p.NewStageID)
	if err != nil {
		return nil, nil, err
	}
	if target.JobID != enrollment.JobID {
		return nil, nil, common.NewValidationError("stage does not belong to this job", map[string]string{
			"newStageId": "stage must belong to the candidate's job pipeline",
		})
	}

	reason := strings.TrimSpace(p.RejectionReason)
	if target.Role == pipeline.RoleTerminalReject && reason == "" {
		return nil, nil, common.NewValidationError("rejection reason required", map[string]string{
			"rejectionReason": "a reason is required when moving a candidate to the rejection stage",
		})
	}

	from, err := s.stages.GetByID(ctx, enrollment.CurrentStageID)
	if err != nil {
		return nil, nil, err
	}

	description := fmt.Sprintf("Stage changed from %q to %q", from.Name, target.Name)
	if reason != "" {
		description += fmt.Sprintf(" (reason: %s)", reason)
	}
	metadata := map[string]any{
		"fromStageId":   from.ID.String(),
		"fromStageName": from.Name,
		"toStageId":     target.ID.String(),
		"toStageName":   target.Name,
	}
	if reason != "" {
		metadata["rejectionReason"] = reason
	}
	for k, v := range p.Metadata {
		metadata[k] = v
	}

	enrollmentID := enrollment.ID
	return s.store.ApplyTransition(ctx, candidate.Transition{
		EnrollmentID: enrollment.ID,
		ToStageID:    target.ID,
		ToStageName:  target.Name,
		OccurredAt:   s.now(),
		Comment:      p.Comment,
		MovedBy:      p.MovedBy,
		Activity: candidate.Activity{
			CandidateID:  enrollment.CandidateID,
			EnrollmentID: &enrollmentID,
			Type:         candidate.ActivityStageChange,
			Description:  description,
			Metadata:     metadata,
		},
	})
}
