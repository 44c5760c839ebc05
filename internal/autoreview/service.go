package autoreview

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/claim"
	"github.com/frahmantamala/claim-management/internal/core/events"
	"github.com/frahmantamala/claim-management/internal/identity"
)

// Sentinel eligible counts returned by RunAutoReview; negative values are
// error codes, not counts, so callers can distinguish "nothing matched"
// from "nothing could run".
const (
	SentinelNotReviewer = -1
	SentinelNoRules     = -2
)

// RuleRepository defines the data access methods for auto-review rules.
type RuleRepository interface {
	Create(rule *Rule) error
	GetByID(id int64) (*Rule, error)
	ListForReviewer(reviewerID int64) ([]*Rule, error)
	ListReviewerIDs() ([]int64, error)
	Update(rule *Rule) error
	Delete(id int64) error
}

// ClaimSource supplies the open-claim candidate pool; satisfied by
// claim.Service.
type ClaimSource interface {
	GetOpenClaims() ([]*claim.Claim, error)
}

// Service owns rule CRUD and orchestrates auto-review runs.
type Service struct {
	rules   RuleRepository
	claims  ClaimSource
	roles   identity.RoleProvider
	checker identity.PermissionChecker
	engine  *Engine
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(rules RuleRepository, claims ClaimSource, roles identity.RoleProvider, engine *Engine, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		rules:   rules,
		claims:  claims,
		roles:   roles,
		checker: identity.NewPermissionChecker(),
		engine:  engine,
		bus:     bus,
		logger:  logger,
	}
}

// AddRule stores a new rule owned by reviewerID.
func (s *Service) AddRule(reviewerID int64, dto RuleDTO) (*Rule, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("rule validation failed", "error", err, "reviewer_id", reviewerID)
		return nil, err
	}

	now := time.Now()
	rule := &Rule{
		ReviewerID: reviewerID,
		Priority:   dto.Priority,
		Decision:   RuleDecision(dto.Decision),
		Variable:   Variable(dto.Variable),
		Operator:   Operator(dto.Operator),
		Threshold:  dto.Threshold,
		Comment:    dto.Comment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.rules.Create(rule); err != nil {
		s.logger.Error("failed to create rule", "error", err, "reviewer_id", reviewerID)
		return nil, err
	}

	s.logger.Info("auto-review rule created",
		"rule_id", rule.ID,
		"reviewer_id", reviewerID,
		"priority", rule.Priority,
		"decision", rule.Decision)

	return rule, nil
}

func (s *Service) GetRule(id, actingUserID int64) (*Rule, error) {
	rule, err := s.rules.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rule.ReviewerID != actingUserID {
		s.logger.Warn("rule access denied: not owner", "rule_id", id, "user_id", actingUserID, "owner_id", rule.ReviewerID)
		return nil, internal.ErrNotRuleOwner
	}
	return rule, nil
}

func (s *Service) ListRules(reviewerID int64) ([]*Rule, error) {
	rules, err := s.rules.ListForReviewer(reviewerID)
	if err != nil {
		s.logger.Error("failed to list rules", "error", err, "reviewer_id", reviewerID)
		return nil, err
	}
	return rules, nil
}

// UpdateRule replaces the configurable fields of a rule. A caller who does
// not own the rule gets ErrNotRuleOwner; the rule is never silently written
// across owners.
func (s *Service) UpdateRule(id, actingUserID int64, dto RuleDTO) (*Rule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rule, err := s.rules.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rule.ReviewerID != actingUserID {
		s.logger.Warn("rule update denied: not owner", "rule_id", id, "user_id", actingUserID, "owner_id", rule.ReviewerID)
		return nil, internal.ErrNotRuleOwner
	}

	rule.Priority = dto.Priority
	rule.Decision = RuleDecision(dto.Decision)
	rule.Variable = Variable(dto.Variable)
	rule.Operator = Operator(dto.Operator)
	rule.Threshold = dto.Threshold
	rule.Comment = dto.Comment
	rule.UpdatedAt = time.Now()

	if err := s.rules.Update(rule); err != nil {
		s.logger.Error("failed to update rule", "error", err, "rule_id", id)
		return nil, err
	}

	s.logger.Info("auto-review rule updated", "rule_id", id, "reviewer_id", actingUserID)
	return rule, nil
}

func (s *Service) RemoveRule(id, actingUserID int64) error {
	rule, err := s.rules.GetByID(id)
	if err != nil {
		return err
	}
	if rule.ReviewerID != actingUserID {
		s.logger.Warn("rule delete denied: not owner", "rule_id", id, "user_id", actingUserID, "owner_id", rule.ReviewerID)
		return internal.ErrNotRuleOwner
	}

	if err := s.rules.Delete(id); err != nil {
		s.logger.Error("failed to delete rule", "error", err, "rule_id", id)
		return err
	}

	s.logger.Info("auto-review rule deleted", "rule_id", id, "reviewer_id", actingUserID)
	return nil
}

// RunAutoReview scans the reviewer's eligible pending claims and applies
// their rule set. The eligible count is -1 when the reviewer holds no
// reviewer role and -2 when they have no rules; otherwise it is the number
// of candidate claims and resolved is the number of distinct claims the
// engine decided.
func (s *Service) RunAutoReview(reviewerID int64) (int, int, error) {
	perms, err := s.roles.PermissionsFor(reviewerID)
	if err != nil {
		return 0, 0, err
	}

	canVerify := s.checker.CanVerifyClaims(perms)
	canApprove := s.checker.CanApproveClaims(perms)
	if !canVerify && !canApprove {
		s.logger.Warn("auto-review denied: user holds no reviewer role", "reviewer_id", reviewerID)
		return SentinelNotReviewer, 0, nil
	}

	rules, err := s.rules.ListForReviewer(reviewerID)
	if err != nil {
		return 0, 0, err
	}
	if len(rules) == 0 {
		s.logger.Info("auto-review skipped: no rules configured", "reviewer_id", reviewerID)
		return SentinelNoRules, 0, nil
	}

	open, err := s.claims.GetOpenClaims()
	if err != nil {
		return 0, 0, err
	}

	eligible := make([]*claim.Claim, 0, len(open))
	for _, c := range open {
		if s.isEligible(c, canVerify, canApprove) {
			eligible = append(eligible, c)
		}
	}

	resolved, err := s.engine.EvaluateAndApply(reviewerID, eligible, rules)
	if err != nil {
		return 0, 0, err
	}

	s.logger.Info("auto-review run completed",
		"reviewer_id", reviewerID,
		"eligible_count", len(eligible),
		"resolved_count", len(resolved))

	if s.bus != nil {
		_ = s.bus.Publish(context.Background(),
			events.NewAutoReviewCompletedEvent(reviewerID, len(eligible), len(resolved)))
	}

	return len(eligible), len(resolved), nil
}

// isEligible: the claim is open and at least one track the reviewer holds a
// role for is still unowned. A claim the reviewer already owns on every
// track they hold is not re-scanned.
func (s *Service) isEligible(c *claim.Claim, canVerify, canApprove bool) bool {
	if !c.IsOpen() {
		return false
	}
	if canVerify && c.Coordinator.ReviewerID == nil {
		return true
	}
	if canApprove && c.Manager.ReviewerID == nil {
		return true
	}
	return false
}

// ReviewersWithRules lists the distinct owners of configured rules; the
// sweep dispatcher feeds these into RunAutoReview.
func (s *Service) ReviewersWithRules() ([]int64, error) {
	ids, err := s.rules.ListReviewerIDs()
	if err != nil {
		s.logger.Error("failed to list reviewers with rules", "error", err)
		return nil, err
	}
	return ids, nil
}
