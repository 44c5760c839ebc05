package claim_test

import (
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/claim"
)

// Mock repository for testing
type mockClaimRepository struct {
	claims      map[int64]*claim.Claim
	createError error
	getError    error
	updateError error
	nextID      int64
	updateCalls int
}

func newMockClaimRepository() *mockClaimRepository {
	return &mockClaimRepository{
		claims: make(map[int64]*claim.Claim),
		nextID: 1,
	}
}

func (m *mockClaimRepository) Create(c *claim.Claim) error {
	if m.createError != nil {
		return m.createError
	}
	c.ID = m.nextID
	m.nextID++
	m.claims[c.ID] = c
	return nil
}

func (m *mockClaimRepository) GetByID(id int64) (*claim.Claim, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	c, exists := m.claims[id]
	if !exists {
		return nil, internal.ErrClaimNotFound
	}
	return c, nil
}

func (m *mockClaimRepository) GetByUserID(userID int64, limit, offset int) ([]*claim.Claim, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var result []*claim.Claim
	for _, c := range m.claims {
		if c.SubmitterID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockClaimRepository) GetAllClaims(limit, offset int) ([]*claim.Claim, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var result []*claim.Claim
	for _, c := range m.claims {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockClaimRepository) GetOpenClaims() ([]*claim.Claim, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var result []*claim.Claim
	for _, c := range m.claims {
		if c.IsOpen() {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockClaimRepository) Update(c *claim.Claim) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.updateCalls++
	m.claims[c.ID] = c
	return nil
}

// Mock role provider keyed by user id
type mockRoleProvider struct {
	permissions map[int64][]string
	lookupError error
}

func (m *mockRoleProvider) PermissionsFor(userID int64) ([]string, error) {
	if m.lookupError != nil {
		return nil, m.lookupError
	}
	return m.permissions[userID], nil
}

// Mock module catalog
type mockModuleCatalog struct {
	codes       map[string]bool
	lookupError error
}

func (m *mockModuleCatalog) ModuleExists(code string) (bool, error) {
	if m.lookupError != nil {
		return false, m.lookupError
	}
	return m.codes[code], nil
}

var _ = Describe("ClaimService", func() {
	const (
		lecturerID    = int64(1)
		coordinatorID = int64(2)
		managerID     = int64(3)
		adminID       = int64(4)
		strangerID    = int64(9)
	)

	var (
		service  *claim.Service
		mockRepo *mockClaimRepository
		roles    *mockRoleProvider
		catalog  *mockModuleCatalog
		logger   *slog.Logger
	)

	validDTO := claim.CreateClaimDTO{
		ModuleCode:  "CS101",
		Description: "July teaching hours",
		HoursWorked: 10,
		HourlyRate:  100,
		Period:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	BeforeEach(func() {
		mockRepo = newMockClaimRepository()
		roles = &mockRoleProvider{permissions: map[int64][]string{
			lecturerID:    {"submit_claims"},
			coordinatorID: {"verify_claims"},
			managerID:     {"approve_claims"},
			adminID:       {"admin"},
		}}
		catalog = &mockModuleCatalog{codes: map[string]bool{"CS101": true}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = claim.NewService(mockRepo, roles, catalog, nil, logger)
	})

	submit := func() *claim.Claim {
		c, err := service.CreateClaim(lecturerID, validDTO)
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Describe("CreateClaim", func() {
		It("creates a pending claim with both tracks unresolved", func() {
			c := submit()
			Expect(c.ID).To(BeNumerically(">", 0))
			Expect(c.ClaimStatus).To(Equal(claim.StatusPending))
			Expect(c.PaymentTotal()).To(Equal(1000.0))
		})

		It("rejects zero hours", func() {
			dto := validDTO
			dto.HoursWorked = 0
			_, err := service.CreateClaim(lecturerID, dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a future period", func() {
			dto := validDTO
			dto.Period = time.Now().Add(48 * time.Hour)
			_, err := service.CreateClaim(lecturerID, dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown module code", func() {
			dto := validDTO
			dto.ModuleCode = "NOPE999"
			_, err := service.CreateClaim(lecturerID, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidModule))
		})

		It("propagates catalog lookup failures", func() {
			catalog.lookupError = errors.New("catalog down")
			_, err := service.CreateClaim(lecturerID, validDTO)
			Expect(err).To(MatchError("catalog down"))
		})
	})

	Describe("Review", func() {
		It("refuses callers with no reviewer role", func() {
			c := submit()
			applied, err := service.Review(c.ID, lecturerID, true, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeFalse())
			Expect(mockRepo.updateCalls).To(BeZero())
		})

		It("refuses review of a missing claim", func() {
			applied, err := service.Review(999, coordinatorID, true, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeFalse())
		})

		It("lets a coordinator verify and leaves the claim pending_confirm", func() {
			c := submit()
			applied, err := service.Review(c.ID, coordinatorID, true, "hours check out")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())

			got := mockRepo.claims[c.ID]
			Expect(got.Coordinator.Decision).To(Equal(claim.DecisionVerified))
			Expect(got.Coordinator.Comment).To(Equal("hours check out"))
			Expect(got.Manager.IsResolved()).To(BeFalse())
			Expect(got.ClaimStatus).To(Equal(claim.StatusPendingConfirm))
		})

		It("accepts the claim once both tracks accept", func() {
			c := submit()
			applied, err := service.Review(c.ID, coordinatorID, true, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())

			applied, err = service.Review(c.ID, managerID, true, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())
			Expect(mockRepo.claims[c.ID].ClaimStatus).To(Equal(claim.StatusAccepted))
		})

		It("rejects the claim when either resolved track declines", func() {
			c := submit()
			_, err := service.Review(c.ID, managerID, true, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Review(c.ID, coordinatorID, false, "duplicate claim")
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.claims[c.ID].ClaimStatus).To(Equal(claim.StatusRejected))
		})

		It("blocks a second coordinator from an owned track", func() {
			roles.permissions[strangerID] = []string{"verify_claims"}
			c := submit()
			_, err := service.Review(c.ID, coordinatorID, true, "")
			Expect(err).NotTo(HaveOccurred())

			applied, err := service.Review(c.ID, strangerID, false, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeFalse())
			Expect(mockRepo.claims[c.ID].Coordinator.Decision).To(Equal(claim.DecisionVerified))
		})

		It("lets a track owner change their own decision", func() {
			c := submit()
			_, err := service.Review(c.ID, coordinatorID, true, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Review(c.ID, managerID, true, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.claims[c.ID].ClaimStatus).To(Equal(claim.StatusAccepted))

			applied, err := service.Review(c.ID, coordinatorID, false, "found an error")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())
			Expect(mockRepo.claims[c.ID].ClaimStatus).To(Equal(claim.StatusRejected))
		})

		It("resolves both tracks at once for an admin", func() {
			c := submit()
			applied, err := service.Review(c.ID, adminID, true, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())

			got := mockRepo.claims[c.ID]
			Expect(got.Coordinator.Decision).To(Equal(claim.DecisionVerified))
			Expect(got.Manager.Decision).To(Equal(claim.DecisionApproved))
			Expect(got.ClaimStatus).To(Equal(claim.StatusAccepted))
		})

		It("treats a dual-role caller with every track owned elsewhere as applied with no write", func() {
			c := submit()
			_, err := service.Review(c.ID, coordinatorID, true, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Review(c.ID, managerID, true, "")
			Expect(err).NotTo(HaveOccurred())
			writesBefore := mockRepo.updateCalls

			applied, err := service.Review(c.ID, adminID, false, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())
			Expect(mockRepo.updateCalls).To(Equal(writesBefore))
			Expect(mockRepo.claims[c.ID].ClaimStatus).To(Equal(claim.StatusAccepted))
		})

		It("propagates store failures", func() {
			c := submit()
			mockRepo.updateError = errors.New("db down")
			applied, err := service.Review(c.ID, coordinatorID, true, "")
			Expect(err).To(MatchError("db down"))
			Expect(applied).To(BeFalse())
		})

		It("propagates role lookup failures", func() {
			c := submit()
			roles.lookupError = errors.New("identity store down")
			_, err := service.Review(c.ID, coordinatorID, true, "")
			Expect(err).To(MatchError("identity store down"))
		})
	})

	Describe("GetClaimByID", func() {
		It("lets the submitter read their own claim", func() {
			c := submit()
			got, err := service.GetClaimByID(c.ID, lecturerID, []string{"submit_claims"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(c.ID))
		})

		It("refuses other users without view_all_claims", func() {
			c := submit()
			_, err := service.GetClaimByID(c.ID, strangerID, nil)
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("allows holders of view_all_claims", func() {
			c := submit()
			got, err := service.GetClaimByID(c.ID, strangerID, []string{"view_all_claims"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(c.ID))
		})
	})

	Describe("GetAllClaims", func() {
		It("refuses callers without view_all_claims", func() {
			_, err := service.GetAllClaims(20, 0, []string{"submit_claims"})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("returns claims for admins", func() {
			submit()
			claims, err := service.GetAllClaims(20, 0, []string{"admin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(claims).To(HaveLen(1))
		})
	})
})
