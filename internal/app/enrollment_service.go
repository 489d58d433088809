package app

import (
	"context"
	"fmt"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
	"snapfind/internal/domain/pipeline"
	"snapfind/internal/domain/rules"

	jobdomain "snapfind/internal/domain/job"
)

// EnrollmentService places a candidate into a job's pipeline: creates the
// enrollment at the entry stage, opens the first ledger interval, records
// the applied activity, then runs auto-rejection.
type EnrollmentService struct {
	enrollments candidate.Repository
	history     candidate.HistoryRepository
	activities  candidate.ActivityRepository
	stages      pipeline.Repository
	jobs        jobdomain.Repository
	autoReject  *AutoRejectService
}

func NewEnrollmentService(enrollments candidate.Repository, history candidate.HistoryRepository, activities candidate.ActivityRepository, stages pipeline.Repository, jobs jobdomain.Repository, autoReject *AutoRejectService) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		history:     history,
		activities:  activities,
		stages:      stages,
		jobs:        jobs,
		autoReject:  autoReject,
	}
}

type EnrollResult struct {
	Enrollment   *candidate.Enrollment `json:"enrollment"`
	AutoRejected bool                  `json:"auto_rejected"`
}

func (s *EnrollmentService) Enroll(ctx context.Context, jobID, candidateID common.UUID, attrs rules.Attributes) (*EnrollResult, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	stages, err := s.stages.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	var entry *pipeline.Stage
	for i := range stages {
		if stages[i].Role == pipeline.RoleEntry {
			entry = &stages[i]
			break
		}
	}
	if entry == nil {
		return nil, common.NewError(common.CodeValidation, "job pipeline has no entry stage", nil)
	}

	enrollment, err := s.enrollments.Create(ctx, candidate.Enrollment{
		JobID:          jobID,
		CandidateID:    candidateID,
		CurrentStageID: entry.ID,
		AppliedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.history.Open(ctx, candidate.HistoryEntry{
		EnrollmentID: enrollment.ID,
		StageID:      entry.ID,
		StageName:    entry.Name,
		EnteredAt:    enrollment.AppliedAt,
		MovedBy:      candidateID,
	}); err != nil {
		return nil, err
	}

	enrollmentID := enrollment.ID
	if _, err := s.activities.Create(ctx, candidate.Activity{
		CandidateID:  candidateID,
		EnrollmentID: &enrollmentID,
		Type:         candidate.ActivityApplied,
		Description:  fmt.Sprintf("Applied and entered stage %q", entry.Name),
		Metadata:     map[string]any{"stageId": entry.ID.String(), "stageName": entry.Name},
	}); err != nil {
		return nil, err
	}

	// Rule evaluation must never fail the application itself.
	rejected := s.autoReject.ProcessApplication(ctx, enrollment.ID, candidateID, attrs, jobID)
	if rejected {
		enrollment, err = s.enrollments.GetByID(ctx, enrollment.ID)
		if err != nil {
			return nil, err
		}
	}
	return &EnrollResult{Enrollment: enrollment, AutoRejected: rejected}, nil
}

func (s *EnrollmentService) History(ctx context.Context, enrollmentID common.UUID) ([]candidate.HistoryEntry, error) {
	if _, err := s.enrollments.GetByID(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return s.history.ListByEnrollment(ctx, enrollmentID)
}

func (s *EnrollmentService) Activities(ctx context.Context, candidateID common.UUID) ([]candidate.Activity, error) {
	return s.activities.ListByCandidate(ctx, candidateID)
}
