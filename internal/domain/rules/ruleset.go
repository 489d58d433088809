package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"snapfind/internal/common"
)

type Field string

const (
	FieldExperience        Field = "experience"
	FieldLocation          Field = "location"
	FieldSkills            Field = "skills"
	FieldEducation         Field = "education"
	FieldSalaryExpectation Field = "salary_expectation"
)

type Operator string

const (
	OpLessThan    Operator = "less_than"
	OpGreaterThan Operator = "greater_than"
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpBetween     Operator = "between"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpContainsAll Operator = "contains_all"
	OpContainsAny Operator = "contains_any"
)

type Connector string

const (
	ConnectorAnd Connector = "AND"
	ConnectorOr  Connector = "OR"
)

type Rule struct {
	ID             string    `json:"id,omitempty"`
	Field          Field     `json:"field"`
	Operator       Operator  `json:"operator"`
	Value          any       `json:"value"`
	LogicConnector Connector `json:"logicConnector,omitempty"`
}

type RuleSet struct {
	Enabled bool   `json:"enabled"`
	Rules   []Rule `json:"rules"`
}

// CombineMode is decided once per rule set: AllOf when at least one rule
// carries an AND connector, AnyOf otherwise.
type CombineMode int

const (
	AnyOf CombineMode = iota
	AllOf
)

func (rs *RuleSet) Mode() CombineMode {
	for _, r := range rs.Rules {
		if r.LogicConnector == ConnectorAnd {
			return AllOf
		}
	}
	return AnyOf
}

// legacyRules is the pre-rule-list shape still present on older jobs.
type legacyRules struct {
	MinExperience     *float64 `json:"minExperience"`
	MaxExperience     *float64 `json:"maxExperience"`
	RequiredSkills    []string `json:"requiredSkills"`
	RequiredEducation *string  `json:"requiredEducation"`
}

// ParseRuleSet decodes a persisted rule-set payload. The modern shape holds
// a rule array; the legacy shape holds an object whose keys are translated
// into equivalent rules combined with OR semantics. A nil or empty payload
// yields a nil rule set, which Evaluate treats as "never reject".
func ParseRuleSet(raw []byte) (*RuleSet, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var envelope struct {
		Enabled bool            `json:"enabled"`
		Rules   json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, common.NewError(common.CodeValidation, "malformed rule set", err)
	}
	rs := &RuleSet{Enabled: envelope.Enabled}
	rulesRaw := bytes.TrimSpace(envelope.Rules)
	if len(rulesRaw) == 0 || bytes.Equal(rulesRaw, []byte("null")) {
		return rs, nil
	}

	if rulesRaw[0] == '{' {
		var legacy legacyRules
		if err := json.Unmarshal(rulesRaw, &legacy); err != nil {
			return nil, common.NewError(common.CodeValidation, "malformed legacy rule set", err)
		}
		rs.Rules = translateLegacy(legacy)
		return rs, nil
	}

	if err := json.Unmarshal(rulesRaw, &rs.Rules); err != nil {
		return nil, common.NewError(common.CodeValidation, "malformed rules", err)
	}
	return rs, nil
}

func translateLegacy(legacy legacyRules) []Rule {
	var out []Rule
	if legacy.MinExperience != nil {
		out = append(out, Rule{
			ID:             "legacy_min_experience",
			Field:          FieldExperience,
			Operator:       OpLessThan,
			Value:          *legacy.MinExperience,
			LogicConnector: ConnectorOr,
		})
	}
	if legacy.MaxExperience != nil {
		out = append(out, Rule{
			ID:             "legacy_max_experience",
			Field:          FieldExperience,
			Operator:       OpGreaterThan,
			Value:          *legacy.MaxExperience,
			LogicConnector: ConnectorOr,
		})
	}
	for i, skill := range legacy.RequiredSkills {
		out = append(out, Rule{
			ID:             fmt.Sprintf("legacy_required_skill_%d", i),
			Field:          FieldSkills,
			Operator:       OpNotContains,
			Value:          skill,
			LogicConnector: ConnectorOr,
		})
	}
	if legacy.RequiredEducation != nil {
		out = append(out, Rule{
			ID:             "legacy_required_education",
			Field:          FieldEducation,
			Operator:       OpNotContains,
			Value:          *legacy.RequiredEducation,
			LogicConnector: ConnectorOr,
		})
	}
	return out
}
