package autoreview_test

import (
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/claim-management/internal/autoreview"
	"github.com/frahmantamala/claim-management/internal/claim"
)

type reviewCall struct {
	ClaimID    int64
	ReviewerID int64
	Accept     bool
	Comment    string
}

// Mock decision engine recording every review attempt
type mockDecisionEngine struct {
	calls       []reviewCall
	applied     bool
	reviewError error
}

func (m *mockDecisionEngine) Review(claimID, actingUserID int64, accept bool, comment string) (bool, error) {
	if m.reviewError != nil {
		return false, m.reviewError
	}
	m.calls = append(m.calls, reviewCall{claimID, actingUserID, accept, comment})
	return m.applied, nil
}

var _ = Describe("Engine", func() {
	const reviewerID = int64(2)

	var (
		engine    *autoreview.Engine
		decisions *mockDecisionEngine
		logger    *slog.Logger
	)

	BeforeEach(func() {
		decisions = &mockDecisionEngine{applied: true}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		engine = autoreview.NewEngine(decisions, logger)
	})

	It("applies rules in ascending priority so the highest priority wins", func() {
		c := openClaim(1, 10, 100)
		rules := []*autoreview.Rule{
			{ID: 2, Priority: 5, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariablePaymentTotal, Operator: autoreview.OperatorGreaterThanOrEqual, Threshold: 500},
			{ID: 1, Priority: 1, Decision: autoreview.RuleDecisionRejected,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 5},
		}

		applied, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c}, rules)
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(Equal([]int64{1}))

		Expect(decisions.calls).To(HaveLen(2))
		Expect(decisions.calls[0].Accept).To(BeFalse(), "priority 1 rejection applied first")
		Expect(decisions.calls[1].Accept).To(BeTrue(), "priority 5 verification applied last")
	})

	It("keeps the relative order of equal priority rules", func() {
		c := openClaim(1, 10, 100)
		rules := []*autoreview.Rule{
			{ID: 1, Priority: 3, Decision: autoreview.RuleDecisionRejected,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 0},
			{ID: 2, Priority: 3, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 0},
		}

		_, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c}, rules)
		Expect(err).NotTo(HaveOccurred())
		Expect(decisions.calls).To(HaveLen(2))
		Expect(decisions.calls[1].Accept).To(BeTrue(), "second listed rule decides last")
	})

	It("skips inert rules and rules with unknown decisions", func() {
		c := openClaim(1, 10, 100)
		rules := []*autoreview.Rule{
			{ID: 1, Decision: autoreview.RuleDecisionPending,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 0},
			{ID: 2, Decision: autoreview.RuleDecision("escalated"),
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 0},
		}

		applied, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c}, rules)
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(BeEmpty())
		Expect(decisions.calls).To(BeEmpty())
	})

	It("skips unevaluable pairs but keeps going", func() {
		c := openClaim(1, 10, 100)
		rules := []*autoreview.Rule{
			{ID: 1, Priority: 1, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.Variable("moon_phase"), Operator: autoreview.OperatorGreaterThan, Threshold: 0},
			{ID: 2, Priority: 2, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.Operator("contains"), Threshold: 0},
			{ID: 3, Priority: 3, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 5},
		}

		applied, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c}, rules)
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(Equal([]int64{1}))
		Expect(decisions.calls).To(HaveLen(1))
		Expect(decisions.calls[0].ClaimID).To(Equal(int64(1)))
	})

	It("does not count claims the decision engine declined to apply", func() {
		decisions.applied = false
		c := openClaim(1, 10, 100)
		rules := []*autoreview.Rule{
			{ID: 1, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 5},
		}

		applied, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c}, rules)
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(BeEmpty())
	})

	It("reports each claim once even when several rules decide it", func() {
		c1 := openClaim(1, 10, 100)
		c2 := openClaim(2, 20, 50)
		rules := []*autoreview.Rule{
			{ID: 1, Priority: 1, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 0},
			{ID: 2, Priority: 2, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariablePaymentTotal, Operator: autoreview.OperatorGreaterThan, Threshold: 0},
		}

		applied, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c1, c2}, rules)
		Expect(err).NotTo(HaveOccurred())
		Expect(applied).To(Equal([]int64{1, 2}))
		Expect(decisions.calls).To(HaveLen(4))
	})

	It("passes the reviewer id and generated comment through", func() {
		c := openClaim(7, 10, 100)
		rules := []*autoreview.Rule{
			{ID: 1, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariablePaymentTotal, Operator: autoreview.OperatorGreaterThanOrEqual, Threshold: 500},
		}

		_, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c}, rules)
		Expect(err).NotTo(HaveOccurred())
		Expect(decisions.calls).To(HaveLen(1))
		Expect(decisions.calls[0].ReviewerID).To(Equal(reviewerID))
		Expect(decisions.calls[0].Comment).To(Equal(
			"Automatically verified claim because payment_total = '1000' is greater_than_or_equal to '500'"))
	})

	It("aborts the run on store failures", func() {
		decisions.reviewError = errors.New("db down")
		c := openClaim(1, 10, 100)
		rules := []*autoreview.Rule{
			{ID: 1, Decision: autoreview.RuleDecisionVerified,
				Variable: autoreview.VariableHoursWorked, Operator: autoreview.OperatorGreaterThan, Threshold: 0},
		}

		_, err := engine.EvaluateAndApply(reviewerID, []*claim.Claim{c}, rules)
		Expect(err).To(MatchError("db down"))
	})
})
