package pipeline

import (
	"sort"
	"time"

	"snapfind/internal/common"
)

// Template is a named, self-contained copy of a job's stage tree. Stages are
// held by value, so a template can never alias the pipeline it was copied
// from and edits on either side stay independent.
type Template struct {
	ID          common.UUID     `json:"id"`
	CompanyID   common.UUID     `json:"company_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedBy   common.UUID     `json:"created_by"`
	Stages      []TemplateStage `json:"stages"`
	CreatedAt   time.Time       `json:"created_at"`
}

type TemplateStage struct {
	Name        string          `json:"name"`
	Position    int             `json:"position"`
	Role        StageRole       `json:"role"`
	IsMandatory bool            `json:"is_mandatory"`
	SubStages   []TemplateStage `json:"sub_stages,omitempty"`
}

// CopyTree builds template stages from persisted stage rows, detaching them
// from their source ids.
func CopyTree(stages []Stage) []TemplateStage {
	byParent := make(map[common.UUID][]Stage)
	var top []Stage
	for _, s := range stages {
		if s.ParentID == nil {
			top = append(top, s)
			continue
		}
		byParent[*s.ParentID] = append(byParent[*s.ParentID], s)
	}
	sortByPosition(top)

	out := make([]TemplateStage, 0, len(top))
	for _, s := range top {
		ts := TemplateStage{
			Name:        s.Name,
			Position:    s.Position,
			Role:        NormalizeRole(s.Role, s.Name),
			IsMandatory: s.IsMandatory,
		}
		children := byParent[s.ID]
		sortByPosition(children)
		for _, child := range children {
			ts.SubStages = append(ts.SubStages, TemplateStage{
				Name:        child.Name,
				Position:    child.Position,
				Role:        NormalizeRole(child.Role, child.Name),
				IsMandatory: child.IsMandatory,
			})
		}
		out = append(out, ts)
	}
	return out
}

func sortByPosition(stages []Stage) {
	sort.Slice(stages, func(i, j int) bool { return stages[i].Position < stages[j].Position })
}
