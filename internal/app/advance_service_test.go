package app

import (
	"context"
	"testing"

	"snapfind/internal/common"
	"snapfind/internal/domain/interview"
	"snapfind/internal/domain/notification"
	"snapfind/internal/domain/settings"
)

type advanceFixture struct {
	fx       pipelineFixture
	ledger   *fakeLedger
	repo     *fakeInterviewRepo
	notifier *fakeNotifier
	service  *AdvanceService
	iv       *interview.Interview
	panel    []common.UUID
}

func newAdvanceFixture(t *testing.T, autoEnabled bool) advanceFixture {
	t.Helper()
	jobs := newFakeJobRepo()
	stages := newFakeStageRepo()
	ledger := newFakeLedger()
	fx := seedPipeline(t, jobs, stages, nil)
	enrollment := enroll(t, ledger, fx)

	repo := newFakeInterviewRepo()
	notifier := &fakeNotifier{}
	settingsRepo := &fakeSettingsRepo{settings: map[common.UUID]*settings.CompanySettings{}}
	if autoEnabled {
		settingsRepo.settings[fx.job.CompanyID] = &settings.CompanySettings{CompanyID: fx.job.CompanyID, AutoStageMovementEnabled: true}
	}

	transitions := NewTransitionService(ledger, stages, ledger)
	service := NewAdvanceService(repo, ledger, stages, jobs, settingsRepo, transitions, notifier, nil)

	panel := []common.UUID{common.NewUUID(), common.NewUUID()}
	iv, err := repo.Create(context.Background(), interview.Interview{
		EnrollmentID: enrollment.ID,
		JobID:        fx.job.ID,
		ScheduledBy:  common.NewUUID(),
		PanelistIDs:  panel,
	})
	if err != nil {
		t.Fatalf("seed interview: %v", err)
	}
	return advanceFixture{fx: fx, ledger: ledger, repo: repo, notifier: notifier, service: service, iv: iv, panel: panel}
}

func TestAdvanceService_UnanimousPositiveAdvances(t *testing.T) {
	a := newAdvanceFixture(t, true)

	outcome, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.RecHire, "solid")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if outcome != OutcomePending {
		t.Fatalf("expected pending before the panel completes, got %s", outcome)
	}

	outcome, err = a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[1], interview.RecStrongHire, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if outcome != OutcomeAdvanced {
		t.Fatalf("expected advanced, got %s", outcome)
	}

	enrollment, _ := a.ledger.GetByID(context.Background(), a.iv.EnrollmentID)
	if enrollment.CurrentStageID != a.fx.screen.ID {
		t.Fatal("candidate should have moved exactly one top-level stage forward")
	}
	history, _ := a.ledger.ListByEnrollment(context.Background(), a.iv.EnrollmentID)
	last := history[len(history)-1]
	if last.MovedBy != SystemActor {
		t.Fatalf("automated move should be attributed to the system actor, got %s", last.MovedBy)
	}
}

func TestAdvanceService_StrongNoHireFlagsForReview(t *testing.T) {
	a := newAdvanceFixture(t, true)

	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.RecStrongHire, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	outcome, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[1], interview.RecStrongNoHire, "red flags")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if outcome != OutcomeFlagged {
		t.Fatalf("expected flagged_for_review, got %s", outcome)
	}

	enrollment, _ := a.ledger.GetByID(context.Background(), a.iv.EnrollmentID)
	if enrollment.CurrentStageID != a.fx.applied.ID {
		t.Fatal("flagged candidate must not move")
	}
	if len(a.notifier.sent) != 1 {
		t.Fatalf("expected one review notification, got %d", len(a.notifier.sent))
	}
	if a.notifier.sent[0].userID != a.iv.ScheduledBy || a.notifier.sent[0].ntype != notification.TypeReviewRequired {
		t.Fatalf("notification should go to the scheduler, got %+v", a.notifier.sent[0])
	}
}

func TestAdvanceService_MixedFeedbackIsManualReview(t *testing.T) {
	a := newAdvanceFixture(t, true)

	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.RecHire, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	outcome, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[1], interview.RecNoHire, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if outcome != OutcomeManualReview {
		t.Fatalf("expected manual_review, got %s", outcome)
	}
	enrollment, _ := a.ledger.GetByID(context.Background(), a.iv.EnrollmentID)
	if enrollment.CurrentStageID != a.fx.applied.ID {
		t.Fatal("mixed feedback must not move the candidate")
	}
	if len(a.notifier.sent) != 0 {
		t.Fatal("manual review raises no notification")
	}
}

func TestAdvanceService_AutomationDisabledSkips(t *testing.T) {
	a := newAdvanceFixture(t, false)

	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.RecHire, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	outcome, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[1], interview.RecHire, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Fatalf("expected skipped with automation off, got %s", outcome)
	}
	enrollment, _ := a.ledger.GetByID(context.Background(), a.iv.EnrollmentID)
	if enrollment.CurrentStageID != a.fx.applied.ID {
		t.Fatal("candidate must not move with automation off")
	}
}

func TestAdvanceService_SubmitFeedbackGuards(t *testing.T) {
	a := newAdvanceFixture(t, true)

	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, common.NewUUID(), interview.RecHire, ""); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for unassigned panelist, got %v", err)
	}
	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.Recommendation("maybe"), ""); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for unknown recommendation, got %v", err)
	}
	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.RecHire, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.RecNoHire, ""); !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict for duplicate feedback, got %v", err)
	}
}

func TestAdvanceService_LastStageIsManualReview(t *testing.T) {
	a := newAdvanceFixture(t, true)

	// Park the candidate in the last stage before the panel completes.
	transitions := a.service.transitions
	if _, _, err := transitions.ChangeStage(context.Background(), ChangeStageParams{
		EnrollmentID:    a.iv.EnrollmentID,
		NewStageID:      a.fx.reject.ID,
		RejectionReason: "withdrew",
		MovedBy:         common.NewUUID(),
	}); err != nil {
		t.Fatalf("seed move: %v", err)
	}

	if _, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[0], interview.RecHire, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	outcome, err := a.service.SubmitFeedback(context.Background(), a.iv.ID, a.panel[1], interview.RecHire, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if outcome != OutcomeManualReview {
		t.Fatalf("expected manual_review when no next stage exists, got %s", outcome)
	}
}
