package app

import (
	"context"
	"fmt"
	"sort"

	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
	"snapfind/internal/domain/interview"
	"snapfind/internal/domain/notification"
	"snapfind/internal/domain/pipeline"
	"snapfind/internal/domain/settings"
	"snapfind/internal/observability"

	jobdomain "snapfind/internal/domain/job"
)

type AdvanceOutcome string

const (
	// OutcomeSkipped: the company disabled automatic stage movement.
	OutcomeSkipped AdvanceOutcome = "skipped"
	// OutcomePending: not every panelist has submitted feedback yet.
	OutcomePending AdvanceOutcome = "pending"
	// OutcomeAdvanced: unanimous positive feedback moved the candidate on.
	OutcomeAdvanced AdvanceOutcome = "advanced"
	// OutcomeFlagged: a strong no-hire raised a review notification.
	OutcomeFlagged AdvanceOutcome = "flagged_for_review"
	// OutcomeManualReview: mixed feedback, no automatic action defined.
	OutcomeManualReview AdvanceOutcome = "manual_review"
)

// AdvanceService reacts to completed interview feedback. It only ever moves
// a candidate through the transition engine and only one top-level stage
// forward.
type AdvanceService struct {
	interviews  interview.Repository
	enrollments candidate.Repository
	stages      pipeline.Repository
	jobs        jobdomain.Repository
	settings    settings.Repository
	transitions *TransitionService
	notifier    notification.Notifier
	logger      *observability.Logger
}

func NewAdvanceService(interviews interview.Repository, enrollments candidate.Repository, stages pipeline.Repository, jobs jobdomain.Repository, settingsRepo settings.Repository, transitions *TransitionService, notifier notification.Notifier, logger *observability.Logger) *AdvanceService {
	return &AdvanceService{
		interviews:  interviews,
		enrollments: enrollments,
		stages:      stages,
		jobs:        jobs,
		settings:    settingsRepo,
		transitions: transitions,
		notifier:    notifier,
		logger:      logger,
	}
}

// SubmitFeedback records one panelist's recommendation and, when it
// completes the panel, runs the auto-advance decision.
func (s *AdvanceService) SubmitFeedback(ctx context.Context, interviewID, panelistID common.UUID, recommendation interview.Recommendation, notes string) (AdvanceOutcome, error) {
	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return "", err
	}
	assigned := false
	for _, id := range iv.PanelistIDs {
		if id == panelistID {
			assigned = true
			break
		}
	}
	if !assigned {
		return "", common.NewValidationError("invalid feedback", map[string]string{"panelistId": "panelist is not assigned to this interview"})
	}
	if !recommendation.Valid() {
		return "", common.NewValidationError("invalid feedback", map[string]string{"recommendation": "recommendation must be strong_hire, hire, no_hire, or strong_no_hire"})
	}
	if _, err := s.interviews.CreateFeedback(ctx, interview.Feedback{
		InterviewID:    interviewID,
		PanelistID:     panelistID,
		Recommendation: recommendation,
		Notes:          notes,
	}); err != nil {
		return "", err
	}
	return s.HandleFeedbackSubmitted(ctx, interviewID)
}

// HandleFeedbackSubmitted fires once the submitted feedback count reaches
// the assigned panelist count. Strong no-hire anywhere flags the candidate
// for the scheduler's review; unanimous hire advances to the next top-level
// stage; anything else is left to manual review.
func (s *AdvanceService) HandleFeedbackSubmitted(ctx context.Context, interviewID common.UUID) (AdvanceOutcome, error) {
	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return "", err
	}
	j, err := s.jobs.GetByID(ctx, iv.JobID)
	if err != nil {
		return "", err
	}

	companySettings, err := s.settings.GetByCompany(ctx, j.CompanyID)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return "", err
	}
	if companySettings == nil || !companySettings.AutoStageMovementEnabled {
		return OutcomeSkipped, nil
	}

	feedback, err := s.interviews.ListFeedback(ctx, interviewID)
	if err != nil {
		return "", err
	}
	if len(feedback) < len(iv.PanelistIDs) {
		return OutcomePending, nil
	}

	recommendations := make([]interview.Recommendation, 0, len(feedback))
	for _, f := range feedback {
		recommendations = append(recommendations, f.Recommendation)
	}
	switch decide(recommendations) {
	case OutcomeFlagged:
		if err := s.notifier.CreateNotification(ctx, iv.ScheduledBy, notification.TypeReviewRequired,
			"Interview feedback needs review",
			"A panelist submitted a strong no-hire recommendation; please review before moving the candidate.",
			iv.EnrollmentID.String()); err != nil {
			s.logger.Error(fmt.Sprintf("auto-advance: failed to notify scheduler for interview %s: %v", interviewID, err))
		}
		return OutcomeFlagged, nil
	case OutcomeAdvanced:
		return s.advance(ctx, iv)
	default:
		return OutcomeManualReview, nil
	}
}

// decide is the pure panel-verdict rule over a complete recommendation set.
func decide(recommendations []interview.Recommendation) AdvanceOutcome {
	allPositive := true
	for _, rec := range recommendations {
		if rec == interview.RecStrongNoHire {
			return OutcomeFlagged
		}
		if !rec.Positive() {
			allPositive = false
		}
	}
	if allPositive {
		return OutcomeAdvanced
	}
	return OutcomeManualReview
}

func (s *AdvanceService) advance(ctx context.Context, iv *interview.Interview) (AdvanceOutcome, error) {
	enrollment, err := s.enrollments.GetByID(ctx, iv.EnrollmentID)
	if err != nil {
		return "", err
	}
	next, err := s.nextTopLevelStage(ctx, enrollment.JobID, enrollment.CurrentStageID)
	if err != nil {
		return "", err
	}
	if next == nil {
		// Already at the last stage; nothing sensible to advance into.
		return OutcomeManualReview, nil
	}
	if _, _, err := s.transitions.ChangeStage(ctx, ChangeStageParams{
		EnrollmentID: enrollment.ID,
		NewStageID:   next.ID,
		Comment:      "Automatically advanced after unanimous positive interview feedback",
		MovedBy:      SystemActor,
		Metadata:     map[string]any{"autoAdvanced": true, "interviewId": iv.ID.String()},
	}); err != nil {
		return "", err
	}
	return OutcomeAdvanced, nil
}

// nextTopLevelStage resolves the stage after the current one by top-level
// position. A sub-stage counts as its parent's position.
func (s *AdvanceService) nextTopLevelStage(ctx context.Context, jobID, currentStageID common.UUID) (*pipeline.Stage, error) {
	stages, err := s.stages.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	byID := make(map[common.UUID]pipeline.Stage, len(stages))
	var top []pipeline.Stage
	for _, stage := range stages {
		byID[stage.ID] = stage
		if stage.IsTopLevel() {
			top = append(top, stage)
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Position < top[j].Position })

	current, ok := byID[currentStageID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "current stage not found", nil)
	}
	currentPosition := current.Position
	if current.ParentID != nil {
		parent, ok := byID[*current.ParentID]
		if !ok {
			return nil, common.NewError(common.CodeNotFound, "parent stage not found", nil)
		}
		currentPosition = parent.Position
	}

	for _, stage := range top {
		if stage.Position > currentPosition {
			next := stage
			return &next, nil
		}
	}
	return nil, nil
}
