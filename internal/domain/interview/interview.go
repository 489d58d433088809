package interview

import (
	"context"
	"strings"
	"time"

	"snapfind/internal/common"
)

type Recommendation string

const (
	RecStrongHire   Recommendation = "strong_hire"
	RecHire         Recommendation = "hire"
	RecNoHire       Recommendation = "no_hire"
	RecStrongNoHire Recommendation = "strong_no_hire"
)

func NormalizeRecommendation(value string) Recommendation {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return Recommendation(normalized)
}

func (r Recommendation) Valid() bool {
	switch r {
	case RecStrongHire, RecHire, RecNoHire, RecStrongNoHire:
		return true
	default:
		return false
	}
}

func (r Recommendation) Positive() bool {
	return r == RecHire || r == RecStrongHire
}

type Interview struct {
	ID           common.UUID   `json:"id"`
	EnrollmentID common.UUID   `json:"enrollment_id"`
	JobID        common.UUID   `json:"job_id"`
	ScheduledBy  common.UUID   `json:"scheduled_by"`
	PanelistIDs  []common.UUID `json:"panelist_ids"`
	ScheduledAt  time.Time     `json:"scheduled_at"`
}

type Feedback struct {
	ID             common.UUID    `json:"id"`
	InterviewID    common.UUID    `json:"interview_id"`
	PanelistID     common.UUID    `json:"panelist_id"`
	Recommendation Recommendation `json:"recommendation"`
	Notes          string         `json:"notes,omitempty"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

type Repository interface {
	Create(ctx context.Context, iv Interview) (*Interview, error)
	GetByID(ctx context.Context, id common.UUID) (*Interview, error)
	// CreateFeedback fails with a conflict when the panelist already
	// submitted for this interview.
	CreateFeedback(ctx context.Context, f Feedback) (*Feedback, error)
	ListFeedback(ctx context.Context, interviewID common.UUID) ([]Feedback, error)
}
