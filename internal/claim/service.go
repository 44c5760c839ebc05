package claim

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/core/events"
	"github.com/frahmantamala/claim-management/internal/identity"
)

// Repository defines the data access methods for claims.
type Repository interface {
	Create(claim *Claim) error
	GetByID(id int64) (*Claim, error)
	GetByUserID(userID int64, limit, offset int) ([]*Claim, error)
	GetAllClaims(limit, offset int) ([]*Claim, error)
	GetOpenClaims() ([]*Claim, error)
	Update(claim *Claim) error
}

// ModuleCatalog validates that a claim's module code refers to an active
// teaching module.
type ModuleCatalog interface {
	ModuleExists(code string) (bool, error)
}

// Service enforces the claim review state machine: who may set which track,
// when, and how the aggregate status is derived.
type Service struct {
	repo    Repository
	roles   identity.RoleProvider
	checker identity.PermissionChecker
	modules ModuleCatalog
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo Repository, roles identity.RoleProvider, modules ModuleCatalog, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		roles:   roles,
		checker: identity.NewPermissionChecker(),
		modules: modules,
		bus:     bus,
		logger:  logger,
	}
}

// CreateClaim records a new monthly claim with both review tracks pending.
func (s *Service) CreateClaim(submitterID int64, dto CreateClaimDTO) (*Claim, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("claim validation failed", "error", err, "submitter_id", submitterID)
		return nil, err
	}

	if s.modules != nil {
		exists, err := s.modules.ModuleExists(dto.ModuleCode)
		if err != nil {
			s.logger.Error("module lookup failed", "error", err, "module_code", dto.ModuleCode)
			return nil, err
		}
		if !exists {
			s.logger.Warn("claim submitted against unknown module", "module_code", dto.ModuleCode, "submitter_id", submitterID)
			return nil, internal.NewValidationError("unknown module code", internal.ErrCodeInvalidModule)
		}
	}

	c := NewClaim(submitterID, dto)
	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to create claim", "error", err, "submitter_id", submitterID)
		return nil, err
	}

	s.logger.Info("claim created successfully",
		"claim_id", c.ID,
		"submitter_id", submitterID,
		"module_code", c.ModuleCode,
		"hours_worked", c.HoursWorked,
		"hourly_rate", c.HourlyRate)

	return c, nil
}

// Review renders a decision on behalf of actingUserID. It returns true when
// the call was a legitimate review attempt (roles held, claim exists, no
// single-role ownership conflict), even if a dual-role caller had one track
// skipped because someone else already owns it. The error return is
// reserved for store failures.
func (s *Service) Review(claimID, actingUserID int64, accept bool, comment string) (bool, error) {
	perms, err := s.roles.PermissionsFor(actingUserID)
	if err != nil {
		return false, err
	}

	canVerify := s.checker.CanVerifyClaims(perms)
	canApprove := s.checker.CanApproveClaims(perms)
	if !canVerify && !canApprove {
		s.logger.Warn("review denied: user holds no reviewer role", "claim_id", claimID, "user_id", actingUserID)
		return false, nil
	}

	c, err := s.repo.GetByID(claimID)
	if err != nil {
		if errors.Is(err, internal.ErrClaimNotFound) {
			s.logger.Warn("review of missing claim", "claim_id", claimID, "user_id", actingUserID)
			return false, nil
		}
		return false, err
	}

	coordinatorOpen := canVerify && c.Coordinator.CanBeSetBy(actingUserID)
	managerOpen := canApprove && c.Manager.CanBeSetBy(actingUserID)

	// A single-role caller blocked on their only track fails outright with
	// no partial mutation. A dual-role caller proceeds per track.
	if canVerify && !canApprove && !coordinatorOpen {
		s.logger.Warn("review denied: coordinator track owned by another reviewer",
			"claim_id", claimID, "user_id", actingUserID)
		return false, nil
	}
	if canApprove && !canVerify && !managerOpen {
		s.logger.Warn("review denied: manager track owned by another reviewer",
			"claim_id", claimID, "user_id", actingUserID)
		return false, nil
	}

	mutated := false
	if coordinatorOpen {
		decision := DecisionVerified
		if !accept {
			decision = DecisionRejected
		}
		c.Coordinator.Resolve(actingUserID, decision, comment)
		mutated = true
	}
	if managerOpen {
		decision := DecisionApproved
		if !accept {
			decision = DecisionRejected
		}
		c.Manager.Resolve(actingUserID, decision, comment)
		mutated = true
	}

	if !mutated {
		// dual-role caller with both tracks owned by others: legitimate
		// attempt, nothing to write
		s.logger.Info("review applied to no tracks", "claim_id", claimID, "user_id", actingUserID)
		return true, nil
	}

	c.RefreshStatus()
	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to persist reviewed claim", "error", err, "claim_id", claimID)
		return false, err
	}

	s.logger.Info("claim reviewed",
		"claim_id", c.ID,
		"reviewer_id", actingUserID,
		"accept", accept,
		"status", c.ClaimStatus)

	s.publishReviewEvents(c, actingUserID)

	return true, nil
}

// GetClaimByID retrieves a claim; submitters see their own claims, reviewers
// see everything.
func (s *Service) GetClaimByID(id, userID int64, userPermissions []string) (*Claim, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get claim", "error", err, "claim_id", id)
		return nil, internal.ErrClaimNotFound
	}

	if c.SubmitterID != userID && !s.checker.CanViewAllClaims(userPermissions) {
		s.logger.Warn("unauthorized access to claim", "claim_id", id, "user_id", userID, "submitter_id", c.SubmitterID)
		return nil, internal.ErrUnauthorizedAccess
	}

	return c, nil
}

func (s *Service) GetUserClaims(userID int64, limit, offset int) ([]*Claim, error) {
	claims, err := s.repo.GetByUserID(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get user claims", "error", err, "user_id", userID)
		return nil, err
	}

	return claims, nil
}

func (s *Service) GetAllClaims(limit, offset int, userPermissions []string) ([]*Claim, error) {
	if !s.checker.CanViewAllClaims(userPermissions) {
		s.logger.Warn("get all claims denied: insufficient permissions", "permissions", userPermissions)
		return nil, internal.ErrUnauthorizedAccess
	}

	claims, err := s.repo.GetAllClaims(limit, offset)
	if err != nil {
		s.logger.Error("failed to get all claims", "error", err)
		return nil, err
	}

	return claims, nil
}

// GetOpenClaims lists claims still awaiting at least one track decision,
// used by the auto-review orchestrator as its candidate pool.
func (s *Service) GetOpenClaims() ([]*Claim, error) {
	claims, err := s.repo.GetOpenClaims()
	if err != nil {
		s.logger.Error("failed to list open claims", "error", err)
		return nil, err
	}
	return claims, nil
}

func (s *Service) publishReviewEvents(c *Claim, reviewerID int64) {
	if s.bus == nil {
		return
	}

	ctx := context.Background()
	_ = s.bus.Publish(ctx, events.NewClaimReviewedEvent(c.ID, reviewerID, string(c.ClaimStatus)))

	switch c.ClaimStatus {
	case StatusAccepted:
		_ = s.bus.Publish(ctx, events.NewClaimAcceptedEvent(c.ID, c.SubmitterID, c.PaymentTotal()))
	case StatusRejected:
		_ = s.bus.Publish(ctx, events.NewClaimRejectedEvent(c.ID, c.SubmitterID))
	}
}
