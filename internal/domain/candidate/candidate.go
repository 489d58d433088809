package candidate

import (
	"time"

	"snapfind/internal/common"
)

// Enrollment places one candidate in one job's pipeline. A candidate is
// enrolled at most once per job; CurrentStageID always references a stage of
// the same job.
type Enrollment struct {
	ID             common.UUID `json:"id"`
	JobID          common.UUID `json:"job_id"`
	CandidateID    common.UUID `json:"candidate_id"`
	CurrentStageID common.UUID `json:"current_stage_id"`
	AppliedAt      time.Time   `json:"applied_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// HistoryEntry is one interval of the time-in-stage ledger. For any
// enrollment at most one entry is open (ExitedAt nil); when a new entry
// opens, the previous one closes in the same transaction and the new
// EnteredAt equals the closed ExitedAt.
type HistoryEntry struct {
	ID            common.UUID `json:"id"`
	EnrollmentID  common.UUID `json:"enrollment_id"`
	StageID       common.UUID `json:"stage_id"`
	StageName     string      `json:"stage_name"`
	EnteredAt     time.Time   `json:"entered_at"`
	ExitedAt      *time.Time  `json:"exited_at,omitempty"`
	DurationHours *float64    `json:"duration_hours,omitempty"`
	Comment       string      `json:"comment,omitempty"`
	MovedBy       common.UUID `json:"moved_by"`
}

type ActivityType string

const (
	ActivityApplied      ActivityType = "applied"
	ActivityStageChange  ActivityType = "stage_change"
	ActivityScoreUpdated ActivityType = "score_updated"
)

// Activity is an append-only audit record; rows are never updated.
type Activity struct {
	ID           common.UUID    `json:"id"`
	CandidateID  common.UUID    `json:"candidate_id"`
	EnrollmentID *common.UUID   `json:"enrollment_id,omitempty"`
	Type         ActivityType   `json:"type"`
	Description  string         `json:"description"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type BulkMoveFailure struct {
	CandidateID common.UUID `json:"candidate_id"`
	Reason      string      `json:"reason"`
}

type BulkMoveResult struct {
	MovedCount  int               `json:"moved_count"`
	FailedCount int               `json:"failed_count"`
	Failures    []BulkMoveFailure `json:"failures,omitempty"`
}

type BulkMoveOutcome int

const (
	BulkAllMoved BulkMoveOutcome = iota
	BulkPartial
	BulkAllFailed
)

func (r BulkMoveResult) Outcome() BulkMoveOutcome {
	switch {
	case r.FailedCount == 0:
		return BulkAllMoved
	case r.MovedCount == 0:
		return BulkAllFailed
	default:
		return BulkPartial
	}
}
