package claim

import (
	"time"

	errors "github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/core/common/validation"
)

// CreateClaimDTO is the request payload for submitting a monthly claim.
type CreateClaimDTO struct {
	ModuleCode  string    `json:"module_code" validate:"required"`
	Description string    `json:"description" validate:"max=500"`
	HoursWorked float64   `json:"hours_worked" validate:"required,min=0"`
	HourlyRate  float64   `json:"hourly_rate" validate:"required,min=0"`
	Period      time.Time `json:"period" validate:"required"`
}

func (dto CreateClaimDTO) Validate() error {
	if err := validation.ValidateClaimHours(dto.HoursWorked); err != nil {
		return err
	}

	validator := validation.NewValidator()
	validator.Field("module_code", dto.ModuleCode).Required()
	validator.Field("hourly_rate", dto.HourlyRate).
		Required().
		MinFloat(0, errors.ErrCodeInvalidRate)
	validator.Field("description", dto.Description).MaxLength(500)
	validator.Field("period", dto.Period).Required().NotFuture()

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// ReviewClaimDTO is the request payload for rendering a decision on a claim.
// Accept is a pointer so that a missing field is distinguishable from an
// explicit rejection.
type ReviewClaimDTO struct {
	Accept  *bool  `json:"accept"`
	Comment string `json:"comment,omitempty"`
}

func (dto ReviewClaimDTO) Validate() error {
	if dto.Accept == nil {
		return errors.NewValidationFieldError("accept", "accept is required", errors.ErrCodeValidationFailed)
	}
	return nil
}

// ClaimResponse augments a claim with its computed payment total.
type ClaimResponse struct {
	*Claim
	PaymentTotal float64 `json:"payment_total"`
}

func NewClaimResponse(c *Claim) ClaimResponse {
	return ClaimResponse{Claim: c, PaymentTotal: c.PaymentTotal()}
}

func NewClaimResponseSlice(claims []*Claim) []ClaimResponse {
	result := make([]ClaimResponse, len(claims))
	for i, c := range claims {
		result[i] = NewClaimResponse(c)
	}
	return result
}
