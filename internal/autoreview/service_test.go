package autoreview_test

import (
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/autoreview"
	"github.com/frahmantamala/claim-management/internal/claim"
)

// Mock rule repository for testing
type mockRuleRepository struct {
	rules       map[int64]*autoreview.Rule
	createError error
	getError    error
	listError   error
	nextID      int64
}

func newMockRuleRepository() *mockRuleRepository {
	return &mockRuleRepository{
		rules:  make(map[int64]*autoreview.Rule),
		nextID: 1,
	}
}

func (m *mockRuleRepository) Create(r *autoreview.Rule) error {
	if m.createError != nil {
		return m.createError
	}
	r.ID = m.nextID
	m.nextID++
	m.rules[r.ID] = r
	return nil
}

func (m *mockRuleRepository) GetByID(id int64) (*autoreview.Rule, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	r, exists := m.rules[id]
	if !exists {
		return nil, internal.ErrRuleNotFound
	}
	return r, nil
}

func (m *mockRuleRepository) ListForReviewer(reviewerID int64) ([]*autoreview.Rule, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var result []*autoreview.Rule
	for _, r := range m.rules {
		if r.ReviewerID == reviewerID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockRuleRepository) ListReviewerIDs() ([]int64, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	seen := make(map[int64]struct{})
	var ids []int64
	for _, r := range m.rules {
		if _, ok := seen[r.ReviewerID]; !ok {
			seen[r.ReviewerID] = struct{}{}
			ids = append(ids, r.ReviewerID)
		}
	}
	return ids, nil
}

func (m *mockRuleRepository) Update(r *autoreview.Rule) error {
	m.rules[r.ID] = r
	return nil
}

func (m *mockRuleRepository) Delete(id int64) error {
	delete(m.rules, id)
	return nil
}

// Mock claim source
type mockClaimSource struct {
	open      []*claim.Claim
	listError error
}

func (m *mockClaimSource) GetOpenClaims() ([]*claim.Claim, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.open, nil
}

// Mock role provider
type stubRoleProvider struct {
	permissions map[int64][]string
}

func (m *stubRoleProvider) PermissionsFor(userID int64) ([]string, error) {
	return m.permissions[userID], nil
}

// Decision engine stub that applies everything
type acceptAllEngine struct {
	calls int
}

func (m *acceptAllEngine) Review(claimID, actingUserID int64, accept bool, comment string) (bool, error) {
	m.calls++
	return true, nil
}

var _ = Describe("AutoReviewService", func() {
	const (
		coordinatorID = int64(2)
		managerID     = int64(3)
		lecturerID    = int64(1)
		otherOwnerID  = int64(8)
	)

	var (
		service   *autoreview.Service
		mockRules *mockRuleRepository
		claims    *mockClaimSource
		roles     *stubRoleProvider
		decisions *acceptAllEngine
		logger    *slog.Logger
	)

	validRule := autoreview.RuleDTO{
		Priority:  1,
		Decision:  "verified",
		Variable:  "payment_total",
		Operator:  "greater_than_or_equal",
		Threshold: 500,
	}

	BeforeEach(func() {
		mockRules = newMockRuleRepository()
		claims = &mockClaimSource{}
		roles = &stubRoleProvider{permissions: map[int64][]string{
			coordinatorID: {"verify_claims"},
			managerID:     {"approve_claims"},
			lecturerID:    {"submit_claims"},
			otherOwnerID:  {"verify_claims"},
		}}
		decisions = &acceptAllEngine{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		engine := autoreview.NewEngine(decisions, logger)
		service = autoreview.NewService(mockRules, claims, roles, engine, nil, logger)
	})

	Describe("AddRule", func() {
		It("stores a rule owned by the caller", func() {
			rule, err := service.AddRule(coordinatorID, validRule)
			Expect(err).NotTo(HaveOccurred())
			Expect(rule.ID).To(BeNumerically(">", 0))
			Expect(rule.ReviewerID).To(Equal(coordinatorID))
		})

		It("rejects unknown decisions", func() {
			dto := validRule
			dto.Decision = "escalated"
			_, err := service.AddRule(coordinatorID, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects unknown variables and operators", func() {
			dto := validRule
			dto.Variable = "moon_phase"
			_, err := service.AddRule(coordinatorID, dto)
			Expect(err).To(HaveOccurred())

			dto = validRule
			dto.Operator = "contains"
			_, err = service.AddRule(coordinatorID, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("rule ownership", func() {
		var ruleID int64

		BeforeEach(func() {
			rule, err := service.AddRule(otherOwnerID, validRule)
			Expect(err).NotTo(HaveOccurred())
			ruleID = rule.ID
		})

		It("hides another reviewer's rule from GetRule", func() {
			_, err := service.GetRule(ruleID, coordinatorID)
			Expect(err).To(MatchError(internal.ErrNotRuleOwner))
		})

		It("refuses updates by non-owners without writing", func() {
			dto := validRule
			dto.Threshold = 1
			_, err := service.UpdateRule(ruleID, coordinatorID, dto)
			Expect(err).To(MatchError(internal.ErrNotRuleOwner))
			Expect(mockRules.rules[ruleID].Threshold).To(Equal(500.0))
		})

		It("refuses deletes by non-owners", func() {
			Expect(service.RemoveRule(ruleID, coordinatorID)).To(MatchError(internal.ErrNotRuleOwner))
			Expect(mockRules.rules).To(HaveKey(ruleID))
		})

		It("lets the owner update and delete", func() {
			dto := validRule
			dto.Threshold = 750
			rule, err := service.UpdateRule(ruleID, otherOwnerID, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(rule.Threshold).To(Equal(750.0))

			Expect(service.RemoveRule(ruleID, otherOwnerID)).To(Succeed())
			Expect(mockRules.rules).NotTo(HaveKey(ruleID))
		})
	})

	Describe("RunAutoReview", func() {
		openClaims := func() []*claim.Claim {
			return []*claim.Claim{
				openClaim(1, 10, 100),
				openClaim(2, 2, 50),
			}
		}

		It("returns the not-a-reviewer sentinel for submitters", func() {
			eligible, resolved, err := service.RunAutoReview(lecturerID)
			Expect(err).NotTo(HaveOccurred())
			Expect(eligible).To(Equal(autoreview.SentinelNotReviewer))
			Expect(resolved).To(BeZero())
		})

		It("returns the no-rules sentinel for a reviewer without rules", func() {
			eligible, resolved, err := service.RunAutoReview(coordinatorID)
			Expect(err).NotTo(HaveOccurred())
			Expect(eligible).To(Equal(autoreview.SentinelNoRules))
			Expect(resolved).To(BeZero())
		})

		It("counts eligible claims and resolved claims", func() {
			_, err := service.AddRule(coordinatorID, validRule)
			Expect(err).NotTo(HaveOccurred())
			claims.open = openClaims()

			eligible, resolved, err := service.RunAutoReview(coordinatorID)
			Expect(err).NotTo(HaveOccurred())
			Expect(eligible).To(Equal(2))
			// only claim 1 reaches the payment_total >= 500 threshold
			Expect(resolved).To(Equal(1))
		})

		It("returns zero counts when no claim matches any rule", func() {
			dto := validRule
			dto.Threshold = 100000
			_, err := service.AddRule(coordinatorID, dto)
			Expect(err).NotTo(HaveOccurred())
			claims.open = openClaims()

			eligible, resolved, err := service.RunAutoReview(coordinatorID)
			Expect(err).NotTo(HaveOccurred())
			Expect(eligible).To(Equal(2))
			Expect(resolved).To(BeZero())
		})

		It("excludes claims whose relevant track is already owned", func() {
			_, err := service.AddRule(coordinatorID, validRule)
			Expect(err).NotTo(HaveOccurred())

			taken := openClaim(1, 10, 100)
			taken.Coordinator.Resolve(otherOwnerID, claim.DecisionVerified, "")
			taken.RefreshStatus()
			claims.open = []*claim.Claim{taken}

			eligible, resolved, err := service.RunAutoReview(coordinatorID)
			Expect(err).NotTo(HaveOccurred())
			Expect(eligible).To(BeZero())
			Expect(resolved).To(BeZero())
			Expect(decisions.calls).To(BeZero())
		})

		It("keeps a manager eligible when only the coordinator track is set", func() {
			dto := validRule
			dto.Decision = "approved"
			_, err := service.AddRule(managerID, dto)
			Expect(err).NotTo(HaveOccurred())

			partAccepted := openClaim(1, 10, 100)
			partAccepted.Coordinator.Resolve(coordinatorID, claim.DecisionVerified, "")
			partAccepted.RefreshStatus()
			claims.open = []*claim.Claim{partAccepted}

			eligible, resolved, err := service.RunAutoReview(managerID)
			Expect(err).NotTo(HaveOccurred())
			Expect(eligible).To(Equal(1))
			Expect(resolved).To(Equal(1))
		})

		It("propagates claim source failures", func() {
			_, err := service.AddRule(coordinatorID, validRule)
			Expect(err).NotTo(HaveOccurred())
			claims.listError = errors.New("db down")

			_, _, err = service.RunAutoReview(coordinatorID)
			Expect(err).To(MatchError("db down"))
		})
	})

	Describe("ReviewersWithRules", func() {
		It("lists distinct rule owners", func() {
			_, err := service.AddRule(coordinatorID, validRule)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AddRule(coordinatorID, validRule)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AddRule(managerID, validRule)
			Expect(err).NotTo(HaveOccurred())

			ids, err := service.ReviewersWithRules()
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(coordinatorID, managerID))
		})
	})
})
