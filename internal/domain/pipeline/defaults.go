package pipeline

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type stageSpec struct {
	Name      string      `yaml:"name"`
	Role      StageRole   `yaml:"role"`
	Mandatory bool        `yaml:"mandatory"`
	SubStages []stageSpec `yaml:"sub_stages"`
}

var (
	defaultsOnce sync.Once
	defaults     []TemplateStage
	defaultsErr  error
)

// DefaultStages returns the built-in pipeline seeded into jobs created
// without an explicit template.
func DefaultStages() ([]TemplateStage, error) {
	defaultsOnce.Do(func() {
		var doc struct {
			Stages []stageSpec `yaml:"stages"`
		}
		if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
			defaultsErr = fmt.Errorf("parse default pipeline: %w", err)
			return
		}
		defaults = buildTemplateStages(doc.Stages)
	})
	return defaults, defaultsErr
}

func buildTemplateStages(specs []stageSpec) []TemplateStage {
	out := make([]TemplateStage, 0, len(specs))
	for i, spec := range specs {
		ts := TemplateStage{
			Name:        spec.Name,
			Position:    i,
			Role:        NormalizeRole(spec.Role, spec.Name),
			IsMandatory: spec.Mandatory,
		}
		for j, sub := range spec.SubStages {
			ts.SubStages = append(ts.SubStages, TemplateStage{
				Name:        sub.Name,
				Position:    j,
				Role:        NormalizeRole(sub.Role, sub.Name),
				IsMandatory: sub.Mandatory,
			})
		}
		out = append(out, ts)
	}
	return out
}
