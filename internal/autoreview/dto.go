package autoreview

import (
	errors "github.com/frahmantamala/claim-management/internal"
)

// RuleDTO is the request payload for creating or updating an auto-review
// rule. The reviewer id always comes from the authenticated caller, never
// from the payload.
type RuleDTO struct {
	Priority  int     `json:"priority"`
	Decision  string  `json:"decision" validate:"required"`
	Variable  string  `json:"variable" validate:"required"`
	Operator  string  `json:"operator" validate:"required"`
	Threshold float64 `json:"threshold"`
	Comment   string  `json:"comment,omitempty"`
}

func (dto RuleDTO) Validate() error {
	if !knownDecision(RuleDecision(dto.Decision)) {
		return errors.NewValidationFieldError("decision", "decision must be one of: pending, verified, approved, rejected", errors.ErrCodeInvalidDecision)
	}
	if !knownVariable(Variable(dto.Variable)) {
		return errors.NewValidationFieldError("variable", "variable must be one of: hours_worked, hourly_rate, payment_total", errors.ErrCodeInvalidVariable)
	}
	if !knownOperator(Operator(dto.Operator)) {
		return errors.NewValidationFieldError("operator", "operator must be one of: equal, not_equal, less_than, less_than_or_equal, greater_than, greater_than_or_equal", errors.ErrCodeInvalidOperator)
	}
	return nil
}

// RunResultResponse reports an auto-review pass. Negative eligible counts
// are sentinels: -1 no reviewer role, -2 no rules configured.
type RunResultResponse struct {
	EligibleCount int `json:"eligible_count"`
	ResolvedCount int `json:"resolved_count"`
}

type RulesResponse struct {
	Rules []*Rule `json:"rules"`
}
