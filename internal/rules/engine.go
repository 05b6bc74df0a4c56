package rules

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/investment-fit/internal/parsing"
	"github.com/jonathan/investment-fit/internal/types"
)

// Skip reasons reported by Trace
const (
	SkipFieldAbsent    = "field absent"
	SkipConditionField = "condition field absent"
	SkipConditionUnmet = "condition not met"
	SkipNoTemplate     = "no template for outcome"
)

// Evaluation records what happened to one rule
type Evaluation struct {
	RuleID     string              `json:"rule_id"`
	Applied    bool                `json:"applied"`
	Result     bool                `json:"result"`
	SkipReason string              `json:"skip_reason,omitempty"`
	Item       *types.FeedbackItem `json:"item,omitempty"`
}

// Engine evaluates one rule set for a target sector
type Engine struct {
	rules  *types.RuleSet
	sector string
}

// NewEngine binds a rule set to the sector substituted for {user_sector_input}
func NewEngine(rs *types.RuleSet, sector string) *Engine {
	return &Engine{rules: rs, sector: sector}
}

// Evaluate returns one feedback item per applicable rule, in declaration order
func (e *Engine) Evaluate(rec types.Record) []types.FeedbackItem {
	items := []types.FeedbackItem{}
	for _, rule := range e.rules.All() {
		if item, ok := EvaluateRule(rule, rec, e.sector); ok {
			items = append(items, item)
		}
	}
	return items
}

// Trace evaluates every rule and explains the ones that were skipped
func (e *Engine) Trace(rec types.Record) []Evaluation {
	all := e.rules.All()
	out := make([]Evaluation, 0, len(all))
	for _, rule := range all {
		out = append(out, trace(rule, rec, e.sector))
	}
	return out
}

// Evaluate is shorthand for NewEngine(rs, sector).Evaluate(rec)
func Evaluate(rs *types.RuleSet, rec types.Record, sector string) []types.FeedbackItem {
	return NewEngine(rs, sector).Evaluate(rec)
}

// EvaluateRule applies a single rule. It reports false when the rule does not
// apply or the selected outcome has no template.
func EvaluateRule(rule types.Rule, rec types.Record, sector string) (types.FeedbackItem, bool) {
	ev := trace(rule, rec, sector)
	if ev.Item == nil {
		return types.FeedbackItem{}, false
	}
	return *ev.Item, true
}

func trace(rule types.Rule, rec types.Record, sector string) Evaluation {
	ev := Evaluation{RuleID: rule.ID}

	if rule.Condition != nil {
		gate, ok := rec.Lookup(rule.Condition.Field)
		if !ok {
			ev.SkipReason = SkipConditionField
			return ev
		}
		if !conditionMet(rule.Condition, gate) {
			ev.SkipReason = SkipConditionUnmet
			return ev
		}
	}

	field, ok := rec.Lookup(rule.FieldToCheck)
	if !ok {
		ev.SkipReason = SkipFieldAbsent
		return ev
	}

	ev.Applied = true
	ev.Result = apply(rule.Operator, field, rule.Value, sector)

	outcome := rule.ResultIfFalse
	if ev.Result {
		outcome = rule.ResultIfTrue
	}
	if outcome == nil {
		ev.SkipReason = SkipNoTemplate
		return ev
	}

	substituted := field
	if rule.Operator == types.OpListLengthBetween {
		if items, isList := field.AsList(); isList {
			substituted = types.Number(float64(len(items)))
		}
	}
	ev.Item = &types.FeedbackItem{
		Text: strings.ReplaceAll(outcome.Text, types.ValuePlaceholder, display(substituted)),
		Type: outcome.Type,
	}
	return ev
}

// apply evaluates an operator. Mismatched types evaluate to false.
func apply(op types.Operator, field, want types.Value, sector string) bool {
	switch op {
	case types.OpContains:
		haystack, ok := field.AsString()
		if !ok {
			return false
		}
		needle, ok := want.AsString()
		if !ok {
			return false
		}
		needle = strings.ReplaceAll(needle, types.SectorPlaceholder, sector)
		needle = strings.TrimSpace(needle)
		if needle == "" {
			return false
		}
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))

	case types.OpBetween:
		n, ok := field.AsNumber()
		if !ok {
			return false
		}
		low, high, ok := numericRange(want)
		return ok && n >= low && n <= high

	case types.OpEquals:
		return field.Equal(want)

	case types.OpIsEmptyOrNA:
		return emptyOrNA(field)

	case types.OpIsNotEmpty:
		return field.Truthy()

	case types.OpLengthGT:
		s, ok := field.AsString()
		if !ok {
			return false
		}
		limit, ok := want.AsNumber()
		return ok && float64(utf8.RuneCountInString(s)) > limit

	case types.OpGT, types.OpLT, types.OpLE:
		n, ok := field.AsNumber()
		if !ok {
			return false
		}
		threshold, ok := want.AsNumber()
		if !ok {
			return false
		}
		switch op {
		case types.OpGT:
			return n > threshold
		case types.OpLT:
			return n < threshold
		default:
			return n <= threshold
		}

	case types.OpListLengthBetween:
		items, ok := field.AsList()
		if !ok {
			return false
		}
		low, high, ok := numericRange(want)
		n := float64(len(items))
		return ok && n >= low && n <= high
	}
	return false
}

// emptyOrNA treats falsy values and "none"/"n/a" text as missing. Lists are
// judged by their available string entries joined together.
func emptyOrNA(field types.Value) bool {
	if !field.Truthy() {
		return true
	}
	var text string
	if items, isList := field.AsList(); isList {
		var parts []string
		for _, item := range items {
			if s, isString := item.AsString(); isString && !parsing.IsUnavailable(s) {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		text = strings.Join(parts, ", ")
	} else if s, isString := field.AsString(); isString {
		text = s
	} else {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == "" || strings.Contains(lower, "none") || strings.Contains(lower, "n/a")
}

// conditionMet evaluates a gating condition against its resolved field
func conditionMet(cond *types.Condition, field types.Value) bool {
	switch cond.Operator {
	case types.CondContainsAny:
		return containsAny(field, cond.Value)
	case types.CondNotContainsAny:
		// an empty field has nothing to describe
		return field.Truthy() && !containsAny(field, cond.Value)
	}
	return false
}

// containsAny reports whether field, as text, contains any candidate substring
func containsAny(field, candidates types.Value) bool {
	if field.IsNull() {
		return false
	}
	list, ok := candidates.AsList()
	if !ok {
		return false
	}
	haystack := strings.ToLower(field.String())
	for _, c := range list {
		s, isString := c.AsString()
		if isString && s != "" && strings.Contains(haystack, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// numericRange reads a two-element [low, high] list
func numericRange(v types.Value) (float64, float64, bool) {
	items, ok := v.AsList()
	if !ok || len(items) != 2 {
		return 0, 0, false
	}
	low, okLow := items[0].AsNumber()
	high, okHigh := items[1].AsNumber()
	return low, high, okLow && okHigh
}

// display renders a field for a template; numbers keep at most two decimals
func display(v types.Value) string {
	if n, ok := v.AsNumber(); ok {
		return types.FormatNumber(math.Round(n*100) / 100)
	}
	return v.String()
}
