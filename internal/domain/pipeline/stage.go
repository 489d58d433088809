package pipeline

import (
	"strings"
	"time"

	"snapfind/internal/common"
)

// StageRole tags a stage with its function in the pipeline so the engine
// never has to locate stages by matching names.
type StageRole string

const (
	RoleEntry          StageRole = "entry"
	RoleStandard       StageRole = "standard"
	RoleTerminalReject StageRole = "terminal_reject"
	RoleTerminalHire   StageRole = "terminal_hire"
)

// Stage is one step of a job's hiring pipeline. ParentID is nil for
// top-level stages; sub-stages nest exactly one level deep. Position is
// unique among siblings (top-level stages, or sub-stages of one parent).
type Stage struct {
	ID          common.UUID  `json:"id"`
	JobID       common.UUID  `json:"job_id"`
	Name        string       `json:"name"`
	Position    int          `json:"position"`
	Role        StageRole    `json:"role"`
	IsDefault   bool         `json:"is_default"`
	IsMandatory bool         `json:"is_mandatory"`
	ParentID    *common.UUID `json:"parent_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (s Stage) IsTopLevel() bool {
	return s.ParentID == nil
}

// NormalizeRole repairs rows created before roles existed by deriving the
// role from the stage name.
func NormalizeRole(role StageRole, name string) StageRole {
	normalized := StageRole(strings.ToLower(strings.TrimSpace(string(role))))
	switch normalized {
	case RoleEntry, RoleStandard, RoleTerminalReject, RoleTerminalHire:
		return normalized
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "applied", "application", "new":
		return RoleEntry
	case "rejected":
		return RoleTerminalReject
	case "hired", "offer accepted":
		return RoleTerminalHire
	default:
		return RoleStandard
	}
}
