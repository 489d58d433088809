package candidate

import (
	"context"
	"time"

	"snapfind/internal/common"
)

type Repository interface {
	Create(ctx context.Context, enrollment Enrollment) (*Enrollment, error)
	GetByID(ctx context.Context, id common.UUID) (*Enrollment, error)
	FindByJobAndCandidate(ctx context.Context, jobID, candidateID common.UUID) (*Enrollment, error)
	ListByJob(ctx context.Context, jobID common.UUID) ([]Enrollment, error)
	// CountByStages reports how many enrollments currently sit in any of the
	// given stages.
	CountByStages(ctx context.Context, stageIDs []common.UUID) (int, error)
}

type HistoryRepository interface {
	// Open starts a new interval; used only when an enrollment is created
	// (transitions open intervals through the TransitionStore).
	Open(ctx context.Context, entry HistoryEntry) (*HistoryEntry, error)
	FindOpen(ctx context.Context, enrollmentID common.UUID) (*HistoryEntry, error)
	ListByEnrollment(ctx context.Context, enrollmentID common.UUID) ([]HistoryEntry, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) (*Activity, error)
	ListByCandidate(ctx context.Context, candidateID common.UUID) ([]Activity, error)
}

// Transition is the atomic unit applied by the TransitionStore: close the
// open history interval at OccurredAt, point the enrollment at ToStageID,
// open a new interval at OccurredAt, and append Activity. All four writes
// commit or roll back together, serialized per enrollment.
type Transition struct {
	EnrollmentID common.UUID
	ToStageID    common.UUID
	ToStageName  string
	OccurredAt   time.Time
	Comment      string
	MovedBy      common.UUID
	Activity     Activity
}

type TransitionStore interface {
	ApplyTransition(ctx context.Context, t Transition) (*Enrollment, *Activity, error)
}
