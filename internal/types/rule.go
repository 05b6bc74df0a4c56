package types

import "github.com/go-playground/validator/v10"

// Operator is the closed set of comparisons a rule can apply
type Operator string

// Rule operators
const (
	OpContains          Operator = "contains"
	OpBetween           Operator = "between"
	OpEquals            Operator = "equals"
	OpIsEmptyOrNA       Operator = "is_empty_or_na"
	OpIsNotEmpty        Operator = "is_not_empty"
	OpLengthGT          Operator = "length_gt"
	OpGT                Operator = "gt"
	OpLT                Operator = "lt"
	OpLE                Operator = "le"
	OpListLengthBetween Operator = "list_length_between"
)

// ConditionOperator is the closed set of gating operators
type ConditionOperator string

// Condition operators
const (
	CondContainsAny    ConditionOperator = "contains_any"
	CondNotContainsAny ConditionOperator = "not_contains_any"
)

// SectorPlaceholder in a contains rule value is replaced by the caller's target sector
const SectorPlaceholder = "{user_sector_input}"

// ValuePlaceholder in a result template is replaced by the resolved field value
const ValuePlaceholder = "{value}"

// Condition gates whether a rule applies
type Condition struct {
	Field    string            `json:"field" validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required,oneof=contains_any not_contains_any"`
	Value    Value             `json:"value"`
}

// Outcome is a feedback template emitted for one branch of a rule
type Outcome struct {
	Text string       `json:"text" validate:"required"`
	Type FeedbackType `json:"type" validate:"required,oneof=positive negative neutral"`
}

// Rule is one declarative check against a company record
type Rule struct {
	ID            string     `json:"id" validate:"required"`
	Description   string     `json:"description,omitempty"`
	FieldToCheck  string     `json:"field_to_check" validate:"required"`
	Operator      Operator   `json:"operator" validate:"required,oneof=contains between equals is_empty_or_na is_not_empty length_gt gt lt le list_length_between"`
	Value         Value      `json:"value"`
	Condition     *Condition `json:"condition,omitempty" validate:"omitempty"`
	ResultIfTrue  *Outcome   `json:"result_if_true,omitempty" validate:"omitempty"`
	ResultIfFalse *Outcome   `json:"result_if_false,omitempty" validate:"omitempty"`
}

// RuleSet groups rules into the three evaluated collections
type RuleSet struct {
	GlobalRules      []Rule `json:"global_rules" validate:"dive"`
	CriticalRedFlags []Rule `json:"critical_red_flags" validate:"dive"`
	PositiveSignals  []Rule `json:"positive_signals" validate:"dive"`
}

// All returns every rule in evaluation order
func (rs *RuleSet) All() []Rule {
	if rs == nil {
		return nil
	}
	all := make([]Rule, 0, len(rs.GlobalRules)+len(rs.CriticalRedFlags)+len(rs.PositiveSignals))
	all = append(all, rs.GlobalRules...)
	all = append(all, rs.CriticalRedFlags...)
	all = append(all, rs.PositiveSignals...)
	return all
}

// Validate checks the struct tags of every rule in the set
func (rs *RuleSet) Validate() error {
	validate := validator.New()
	return validate.Struct(rs)
}
