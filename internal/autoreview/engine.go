package autoreview

import (
	"log/slog"
	"sort"

	"github.com/frahmantamala/claim-management/internal/claim"
)

// DecisionEngine is the claim review operation the rule engine drives. It is
// satisfied by claim.Service.
type DecisionEngine interface {
	Review(claimID, actingUserID int64, accept bool, comment string) (bool, error)
}

// Engine applies a reviewer's rule set to candidate claims.
type Engine struct {
	decisions DecisionEngine
	logger    *slog.Logger
}

func NewEngine(decisions DecisionEngine, logger *slog.Logger) *Engine {
	return &Engine{
		decisions: decisions,
		logger:    logger,
	}
}

// EvaluateAndApply runs every active rule against every candidate claim in
// ascending priority order and returns the distinct ids of claims that
// received at least one decision.
//
// The iteration deliberately does NOT stop at the first matching rule: a
// claim matched by several rules is re-decided by each in turn, so the
// highest-priority match is the one that ends up persisted. Pairs whose
// variable or operator cannot be evaluated are skipped, not fatal. Store
// failures from the decision engine abort the run and propagate.
func (e *Engine) EvaluateAndApply(reviewerID int64, claims []*claim.Claim, rules []*Rule) ([]int64, error) {
	active := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsInert() {
			continue
		}
		if !knownDecision(r.Decision) {
			e.logger.Warn("skipping rule with unknown decision", "rule_id", r.ID, "decision", r.Decision)
			continue
		}
		active = append(active, r)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})

	applied := make(map[int64]struct{})
	var appliedOrder []int64

	for _, rule := range active {
		for _, c := range claims {
			value, ok := rule.ValueOf(c)
			if !ok {
				e.logger.Warn("skipping rule with unknown variable",
					"rule_id", rule.ID, "variable", rule.Variable, "claim_id", c.ID)
				continue
			}

			matched, ok := rule.Matches(value)
			if !ok {
				e.logger.Warn("skipping rule with unknown operator",
					"rule_id", rule.ID, "operator", rule.Operator, "claim_id", c.ID)
				continue
			}
			if !matched {
				continue
			}

			ok, err := e.decisions.Review(c.ID, reviewerID, rule.Accept(), rule.CommentFor(value))
			if err != nil {
				return nil, err
			}
			if !ok {
				e.logger.Debug("auto review not applied",
					"rule_id", rule.ID, "claim_id", c.ID, "reviewer_id", reviewerID)
				continue
			}

			e.logger.Info("rule applied to claim",
				"rule_id", rule.ID,
				"claim_id", c.ID,
				"reviewer_id", reviewerID,
				"decision", rule.Decision,
				"priority", rule.Priority)

			if _, seen := applied[c.ID]; !seen {
				applied[c.ID] = struct{}{}
				appliedOrder = append(appliedOrder, c.ID)
			}
		}
	}

	return appliedOrder, nil
}
