package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"snapfind/internal/common"
)

// Attributes are the candidate facts a rule set is evaluated against.
type Attributes struct {
	Experience        float64  `json:"experience"`
	SalaryExpectation float64  `json:"salary_expectation"`
	Location          string   `json:"location"`
	Education         string   `json:"education"`
	Skills            []string `json:"skills"`
}

type Verdict struct {
	ShouldReject bool   `json:"should_reject"`
	Reason       string `json:"reason,omitempty"`
	Triggered    *Rule  `json:"triggered_rule,omitempty"`
}

// Evaluate is pure: it never touches storage and has no side effects. A nil,
// disabled, or empty rule set never rejects. With AllOf mode every rule must
// hold for a rejection; with AnyOf a single holding rule rejects.
func Evaluate(attrs Attributes, rs *RuleSet) (Verdict, error) {
	if rs == nil || !rs.Enabled || len(rs.Rules) == 0 {
		return Verdict{}, nil
	}

	mode := rs.Mode()
	var reasons []string
	var triggered *Rule
	for i := range rs.Rules {
		rule := rs.Rules[i]
		matched, reason, err := evaluateRule(attrs, rule)
		if err != nil {
			return Verdict{}, err
		}
		if !matched {
			if mode == AllOf {
				return Verdict{}, nil
			}
			continue
		}
		if triggered == nil {
			triggered = &rs.Rules[i]
		}
		reasons = append(reasons, reason)
		if mode == AnyOf {
			break
		}
	}
	if triggered == nil {
		return Verdict{}, nil
	}
	return Verdict{
		ShouldReject: true,
		Reason:       strings.Join(reasons, "; "),
		Triggered:    triggered,
	}, nil
}

func evaluateRule(attrs Attributes, rule Rule) (bool, string, error) {
	switch rule.Field {
	case FieldExperience:
		return evaluateNumeric("Experience", attrs.Experience, rule, " years")
	case FieldSalaryExpectation:
		return evaluateNumeric("Salary expectation", attrs.SalaryExpectation, rule, "")
	case FieldLocation:
		return evaluateText("Location", attrs.Location, rule)
	case FieldEducation:
		return evaluateText("Education", attrs.Education, rule)
	case FieldSkills:
		return evaluateSkills(attrs.Skills, rule)
	default:
		return false, "", common.NewError(common.CodeValidation, fmt.Sprintf("unknown rule field %q", rule.Field), nil)
	}
}

func evaluateNumeric(label string, observed float64, rule Rule, unit string) (bool, string, error) {
	if rule.Operator == OpBetween {
		low, high, err := rangeValue(rule)
		if err != nil {
			return false, "", err
		}
		if observed >= low && observed <= high {
			return true, fmt.Sprintf("%s (%s%s) is within disqualifying range (%s-%s%s)",
				label, formatNumber(observed), unit, formatNumber(low), formatNumber(high), unit), nil
		}
		return false, "", nil
	}

	value, ok := toFloat(rule.Value)
	if !ok {
		return false, "", common.NewError(common.CodeValidation, fmt.Sprintf("rule value for %q is not numeric", rule.Field), nil)
	}
	switch rule.Operator {
	case OpLessThan:
		if observed < value {
			return true, fmt.Sprintf("%s (%s%s) is less than required minimum (%s%s)",
				label, formatNumber(observed), unit, formatNumber(value), unit), nil
		}
	case OpGreaterThan:
		if observed > value {
			return true, fmt.Sprintf("%s (%s%s) is greater than allowed maximum (%s%s)",
				label, formatNumber(observed), unit, formatNumber(value), unit), nil
		}
	case OpEquals:
		if observed == value {
			return true, fmt.Sprintf("%s (%s%s) equals disqualifying value (%s%s)",
				label, formatNumber(observed), unit, formatNumber(value), unit), nil
		}
	case OpNotEquals:
		if observed != value {
			return true, fmt.Sprintf("%s (%s%s) does not match required value (%s%s)",
				label, formatNumber(observed), unit, formatNumber(value), unit), nil
		}
	default:
		return false, "", common.NewError(common.CodeValidation, fmt.Sprintf("operator %q is not valid for numeric field %q", rule.Operator, rule.Field), nil)
	}
	return false, "", nil
}

func evaluateText(label, observed string, rule Rule) (bool, string, error) {
	value, ok := rule.Value.(string)
	if !ok {
		return false, "", common.NewError(common.CodeValidation, fmt.Sprintf("rule value for %q is not text", rule.Field), nil)
	}
	lowObserved := strings.ToLower(observed)
	lowValue := strings.ToLower(value)

	switch rule.Operator {
	case OpEquals:
		if lowObserved == lowValue {
			return true, fmt.Sprintf("%s (%s) equals disqualifying value (%s)", label, observed, value), nil
		}
	case OpNotEquals:
		if lowObserved != lowValue {
			return true, fmt.Sprintf("%s (%s) does not match required value (%s)", label, observed, value), nil
		}
	case OpContains:
		if strings.Contains(lowObserved, lowValue) {
			return true, fmt.Sprintf("%s (%s) contains %q", label, observed, value), nil
		}
	case OpNotContains:
		if !strings.Contains(lowObserved, lowValue) {
			return true, fmt.Sprintf("%s (%s) does not contain %q", label, observed, value), nil
		}
	default:
		return false, "", common.NewError(common.CodeValidation, fmt.Sprintf("operator %q is not valid for text field %q", rule.Operator, rule.Field), nil)
	}
	return false, "", nil
}

func evaluateSkills(skills []string, rule Rule) (bool, string, error) {
	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	switch rule.Operator {
	case OpContains, OpNotContains:
		value, ok := rule.Value.(string)
		if !ok {
			return false, "", common.NewError(common.CodeValidation, "skills rule value is not text", nil)
		}
		present := have[strings.ToLower(strings.TrimSpace(value))]
		if rule.Operator == OpContains && present {
			return true, fmt.Sprintf("Skills include disqualifying skill %q", value), nil
		}
		if rule.Operator == OpNotContains && !present {
			return true, fmt.Sprintf("Skills do not include required skill %q", value), nil
		}
		return false, "", nil
	case OpContainsAll, OpContainsAny:
		values, err := stringListValue(rule)
		if err != nil {
			return false, "", err
		}
		matches := 0
		for _, v := range values {
			if have[strings.ToLower(strings.TrimSpace(v))] {
				matches++
			}
		}
		if rule.Operator == OpContainsAll && matches == len(values) && len(values) > 0 {
			return true, fmt.Sprintf("Skills include all of: %s", strings.Join(values, ", ")), nil
		}
		if rule.Operator == OpContainsAny && matches > 0 {
			return true, fmt.Sprintf("Skills include one of: %s", strings.Join(values, ", ")), nil
		}
		return false, "", nil
	default:
		return false, "", common.NewError(common.CodeValidation, fmt.Sprintf("operator %q is not valid for skills", rule.Operator), nil)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func rangeValue(rule Rule) (float64, float64, error) {
	list, ok := rule.Value.([]any)
	if !ok || len(list) != 2 {
		return 0, 0, common.NewError(common.CodeValidation, "between rule requires a two-element range", nil)
	}
	low, okLow := toFloat(list[0])
	high, okHigh := toFloat(list[1])
	if !okLow || !okHigh {
		return 0, 0, common.NewError(common.CodeValidation, "between rule range is not numeric", nil)
	}
	if low > high {
		low, high = high, low
	}
	return low, high, nil
}

func stringListValue(rule Rule) ([]string, error) {
	switch v := rule.Value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, common.NewError(common.CodeValidation, "skills rule list contains a non-text value", nil)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, common.NewError(common.CodeValidation, "skills rule value is not a list", nil)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
