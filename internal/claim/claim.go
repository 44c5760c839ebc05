package claim

import (
	"time"

	claimDatamodel "github.com/frahmantamala/claim-management/internal/core/datamodel/claim"
)

// Decision is the per-track review outcome. Verified and approved are the
// coordinator and manager spellings of "accepted"; rejected is shared.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionVerified Decision = "verified"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Status is the aggregate claim state, always derived from the two track
// decisions and never set directly by callers.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingConfirm Status = "pending_confirm"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
)

// Track is one independent review lane on a claim. The first reviewer to
// decide claims the track; only that same reviewer may re-decide it.
type Track struct {
	ReviewerID *int64   `json:"reviewer_id,omitempty"`
	Decision   Decision `json:"decision"`
	Comment    string   `json:"comment,omitempty"`
}

func (t *Track) CanBeSetBy(userID int64) bool {
	return t.ReviewerID == nil || *t.ReviewerID == userID
}

func (t *Track) Resolve(reviewerID int64, decision Decision, comment string) {
	t.ReviewerID = &reviewerID
	t.Decision = decision
	t.Comment = comment
}

func (t *Track) IsResolved() bool {
	return t.Decision != DecisionPending
}

type Claim struct {
	ID          int64     `json:"id"`
	SubmitterID int64     `json:"submitter_id"`
	ModuleCode  string    `json:"module_code"`
	Description string    `json:"description"`
	HoursWorked float64   `json:"hours_worked"`
	HourlyRate  float64   `json:"hourly_rate"`
	Coordinator Track     `json:"coordinator"`
	Manager     Track     `json:"manager"`
	ClaimStatus Status    `json:"claim_status"`
	Period      time.Time `json:"period"`
	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PaymentTotal is computed, never stored.
func (c *Claim) PaymentTotal() float64 {
	return c.HoursWorked * c.HourlyRate
}

// IsOpen reports whether the claim can still receive reviews in the normal
// flow. Track owners may re-review resolved claims for correction, so this
// only gates auto-review candidate selection.
func (c *Claim) IsOpen() bool {
	return c.ClaimStatus == StatusPending || c.ClaimStatus == StatusPendingConfirm
}

// RefreshStatus re-derives the aggregate status from the two track
// decisions: any pending track keeps the claim in pending_confirm; once both
// resolve, a single rejection rejects the whole claim.
func (c *Claim) RefreshStatus() {
	if !c.Coordinator.IsResolved() || !c.Manager.IsResolved() {
		c.ClaimStatus = StatusPendingConfirm
		return
	}
	if c.Coordinator.Decision == DecisionVerified && c.Manager.Decision == DecisionApproved {
		c.ClaimStatus = StatusAccepted
		return
	}
	c.ClaimStatus = StatusRejected
}

func NewClaim(submitterID int64, dto CreateClaimDTO) *Claim {
	now := time.Now()

	return &Claim{
		SubmitterID: submitterID,
		ModuleCode:  dto.ModuleCode,
		Description: dto.Description,
		HoursWorked: dto.HoursWorked,
		HourlyRate:  dto.HourlyRate,
		Coordinator: Track{Decision: DecisionPending},
		Manager:     Track{Decision: DecisionPending},
		ClaimStatus: StatusPending,
		Period:      dto.Period,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(c *Claim) *claimDatamodel.Claim {
	return &claimDatamodel.Claim{
		ID:                 c.ID,
		SubmitterID:        c.SubmitterID,
		ModuleCode:         c.ModuleCode,
		Description:        c.Description,
		HoursWorked:        c.HoursWorked,
		HourlyRate:         c.HourlyRate,
		CoordinatorID:      c.Coordinator.ReviewerID,
		CoordinatorOutcome: string(c.Coordinator.Decision),
		CoordinatorComment: optionalText(c.Coordinator.Comment),
		ManagerID:          c.Manager.ReviewerID,
		ManagerOutcome:     string(c.Manager.Decision),
		ManagerComment:     optionalText(c.Manager.Comment),
		ClaimStatus:        string(c.ClaimStatus),
		Period:             c.Period,
		SubmittedAt:        c.SubmittedAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func FromDataModel(m *claimDatamodel.Claim) *Claim {
	return &Claim{
		ID:          m.ID,
		SubmitterID: m.SubmitterID,
		ModuleCode:  m.ModuleCode,
		Description: m.Description,
		HoursWorked: m.HoursWorked,
		HourlyRate:  m.HourlyRate,
		Coordinator: Track{
			ReviewerID: m.CoordinatorID,
			Decision:   Decision(m.CoordinatorOutcome),
			Comment:    textOrEmpty(m.CoordinatorComment),
		},
		Manager: Track{
			ReviewerID: m.ManagerID,
			Decision:   Decision(m.ManagerOutcome),
			Comment:    textOrEmpty(m.ManagerComment),
		},
		ClaimStatus: Status(m.ClaimStatus),
		Period:      m.Period,
		SubmittedAt: m.SubmittedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func FromDataModelSlice(claims []*claimDatamodel.Claim) []*Claim {
	result := make([]*Claim, len(claims))
	for i, m := range claims {
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
