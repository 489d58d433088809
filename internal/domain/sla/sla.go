package sla

import (
	"context"
	"time"

	"snapfind/internal/common"
)

// Threshold caps how many days an enrollment may sit in a stage before it is
// flagged. Unique per (company, stage name).
type Threshold struct {
	ID        common.UUID `json:"id"`
	CompanyID common.UUID `json:"company_id"`
	StageName string      `json:"stage_name"`
	Days      int         `json:"days"`
	CreatedAt time.Time   `json:"created_at"`
}

// Occupancy is one active enrollment with the start of its current stage
// interval. EnteredAt falls back to the enrollment's applied time when no
// history exists.
type Occupancy struct {
	EnrollmentID common.UUID `json:"enrollment_id"`
	JobID        common.UUID `json:"job_id"`
	CandidateID  common.UUID `json:"candidate_id"`
	RecruiterID  common.UUID `json:"recruiter_id"`
	StageID      common.UUID `json:"stage_id"`
	StageName    string      `json:"stage_name"`
	EnteredAt    time.Time   `json:"entered_at"`
}

type BreachAlert struct {
	Occupancy
	ThresholdDays int     `json:"threshold_days"`
	DaysInStage   float64 `json:"days_in_stage"`
	DaysOverdue   int     `json:"days_overdue"`
}

type JobHealth string

const (
	HealthOnTrack  JobHealth = "on_track"
	HealthAtRisk   JobHealth = "at_risk"
	HealthBreached JobHealth = "breached"
)

// ClassifyAge is the coarse job-level heuristic: breached past the default
// threshold, at risk within marginDays of it.
func ClassifyAge(ageDays float64, thresholdDays, marginDays int) JobHealth {
	switch {
	case ageDays > float64(thresholdDays):
		return HealthBreached
	case ageDays > float64(thresholdDays-marginDays):
		return HealthAtRisk
	default:
		return HealthOnTrack
	}
}

type Repository interface {
	CreateThreshold(ctx context.Context, t Threshold) (*Threshold, error)
	ListThresholds(ctx context.Context, companyID common.UUID) ([]Threshold, error)
	// ListOccupancies returns every active enrollment under the company with
	// its current stage and interval start.
	ListOccupancies(ctx context.Context, companyID common.UUID) ([]Occupancy, error)
	// ListCompanyIDs returns the companies that currently have open jobs.
	ListCompanyIDs(ctx context.Context) ([]common.UUID, error)
}
