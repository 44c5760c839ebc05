package autoreview

import (
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/claim-management/internal/claim"
	ruleDatamodel "github.com/frahmantamala/claim-management/internal/core/datamodel/autoreview"
)

// RuleDecision is the decision a rule renders when it matches. A pending
// decision makes the rule inert: it is stored but never applied.
type RuleDecision string

const (
	RuleDecisionPending  RuleDecision = "pending"
	RuleDecisionVerified RuleDecision = "verified"
	RuleDecisionApproved RuleDecision = "approved"
	RuleDecisionRejected RuleDecision = "rejected"
)

// Variable selects which claim quantity a rule compares against.
type Variable string

const (
	VariableHoursWorked  Variable = "hours_worked"
	VariableHourlyRate   Variable = "hourly_rate"
	VariablePaymentTotal Variable = "payment_total"
)

type Operator string

const (
	OperatorEqual              Operator = "equal"
	OperatorNotEqual           Operator = "not_equal"
	OperatorLessThan           Operator = "less_than"
	OperatorLessThanOrEqual    Operator = "less_than_or_equal"
	OperatorGreaterThan        Operator = "greater_than"
	OperatorGreaterThanOrEqual Operator = "greater_than_or_equal"
)

// Rule is a reviewer-owned predicate and decision. Priority is a precedence
// weight: rules are applied in ascending order, so a higher priority rule is
// applied later and its decision overwrites earlier ones.
type Rule struct {
	ID         int64        `json:"id"`
	ReviewerID int64        `json:"reviewer_id"`
	Priority   int          `json:"priority"`
	Decision   RuleDecision `json:"decision"`
	Variable   Variable     `json:"variable"`
	Operator   Operator     `json:"operator"`
	Threshold  float64      `json:"threshold"`
	Comment    string       `json:"comment,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (r *Rule) IsInert() bool {
	return r.Decision == RuleDecisionPending
}

// Accept reports the accept flag handed to the decision engine when this
// rule matches: every known decision except rejected counts as acceptance.
func (r *Rule) Accept() bool {
	return r.Decision != RuleDecisionRejected
}

// ValueOf extracts the compared quantity from a claim. The second return is
// false for an unrecognised variable, which skips the (rule, claim) pair.
func (r *Rule) ValueOf(c *claim.Claim) (float64, bool) {
	switch r.Variable {
	case VariableHoursWorked:
		return c.HoursWorked, true
	case VariableHourlyRate:
		return c.HourlyRate, true
	case VariablePaymentTotal:
		return c.PaymentTotal(), true
	default:
		return 0, false
	}
}

// Matches evaluates value <operator> threshold. The second return is false
// for an unrecognised operator.
func (r *Rule) Matches(value float64) (bool, bool) {
	switch r.Operator {
	case OperatorEqual:
		return value == r.Threshold, true
	case OperatorNotEqual:
		return value != r.Threshold, true
	case OperatorLessThan:
		return value < r.Threshold, true
	case OperatorLessThanOrEqual:
		return value <= r.Threshold, true
	case OperatorGreaterThan:
		return value > r.Threshold, true
	case OperatorGreaterThanOrEqual:
		return value >= r.Threshold, true
	default:
		return false, false
	}
}

// CommentFor returns the reviewer's configured comment, or a generated
// explanation of why the rule fired.
func (r *Rule) CommentFor(value float64) string {
	if r.Comment != "" {
		return r.Comment
	}
	return fmt.Sprintf("Automatically %s claim because %s = '%s' is %s to '%s'",
		r.Decision, r.Variable, formatDecimal(value), r.Operator, formatDecimal(r.Threshold))
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func knownDecision(d RuleDecision) bool {
	switch d {
	case RuleDecisionPending, RuleDecisionVerified, RuleDecisionApproved, RuleDecisionRejected:
		return true
	}
	return false
}

func knownVariable(v Variable) bool {
	switch v {
	case VariableHoursWorked, VariableHourlyRate, VariablePaymentTotal:
		return true
	}
	return false
}

func knownOperator(o Operator) bool {
	switch o {
	case OperatorEqual, OperatorNotEqual, OperatorLessThan, OperatorLessThanOrEqual,
		OperatorGreaterThan, OperatorGreaterThanOrEqual:
		return true
	}
	return false
}

func ToDataModel(r *Rule) *ruleDatamodel.Rule {
	return &ruleDatamodel.Rule{
		ID:         r.ID,
		ReviewerID: r.ReviewerID,
		Priority:   r.Priority,
		Decision:   string(r.Decision),
		Variable:   string(r.Variable),
		Operator:   string(r.Operator),
		Threshold:  r.Threshold,
		Comment:    optionalText(r.Comment),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func FromDataModel(m *ruleDatamodel.Rule) *Rule {
	return &Rule{
		ID:         m.ID,
		ReviewerID: m.ReviewerID,
		Priority:   m.Priority,
		Decision:   RuleDecision(m.Decision),
		Variable:   Variable(m.Variable),
		Operator:   Operator(m.Operator),
		Threshold:  m.Threshold,
		Comment:    textOrEmpty(m.Comment),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func FromDataModelSlice(rules []*ruleDatamodel.Rule) []*Rule {
	result := make([]*Rule, len(rules))
	for i, m := range rules {
		result[i] = FromDataModel(m)
	}
	return result
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func textOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
