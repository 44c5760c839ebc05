package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeClaimReviewed       = "claim.reviewed"
	EventTypeClaimAccepted       = "claim.accepted"
	EventTypeClaimRejected       = "claim.rejected"
	EventTypeAutoReviewCompleted = "autoreview.completed"
)

type ClaimReviewedEvent struct {
	BaseEvent
	ClaimID    int64  `json:"claim_id"`
	ReviewerID int64  `json:"reviewer_id"`
	Status     string `json:"status"`
}

func NewClaimReviewedEvent(claimID, reviewerID int64, status string) *ClaimReviewedEvent {
	return &ClaimReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClaimReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"claim_id":    claimID,
				"reviewer_id": reviewerID,
				"status":      status,
			},
		},
		ClaimID:    claimID,
		ReviewerID: reviewerID,
		Status:     status,
	}
}

// ClaimAcceptedEvent fires once both tracks resolve in favour of the claim;
// the surrounding application uses it to kick off invoicing.
type ClaimAcceptedEvent struct {
	BaseEvent
	ClaimID      int64   `json:"claim_id"`
	SubmitterID  int64   `json:"submitter_id"`
	PaymentTotal float64 `json:"payment_total"`
}

func NewClaimAcceptedEvent(claimID, submitterID int64, paymentTotal float64) *ClaimAcceptedEvent {
	return &ClaimAcceptedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClaimAccepted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"claim_id":      claimID,
				"submitter_id":  submitterID,
				"payment_total": paymentTotal,
			},
		},
		ClaimID:      claimID,
		SubmitterID:  submitterID,
		PaymentTotal: paymentTotal,
	}
}

type ClaimRejectedEvent struct {
	BaseEvent
	ClaimID     int64 `json:"claim_id"`
	SubmitterID int64 `json:"submitter_id"`
}

func NewClaimRejectedEvent(claimID, submitterID int64) *ClaimRejectedEvent {
	return &ClaimRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClaimRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"claim_id":     claimID,
				"submitter_id": submitterID,
			},
		},
		ClaimID:     claimID,
		SubmitterID: submitterID,
	}
}

type AutoReviewCompletedEvent struct {
	BaseEvent
	ReviewerID    int64 `json:"reviewer_id"`
	EligibleCount int   `json:"eligible_count"`
	ResolvedCount int   `json:"resolved_count"`
}

func NewAutoReviewCompletedEvent(reviewerID int64, eligible, resolved int) *AutoReviewCompletedEvent {
	return &AutoReviewCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAutoReviewCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reviewer_id":    reviewerID,
				"eligible_count": eligible,
				"resolved_count": resolved,
			},
		},
		ReviewerID:    reviewerID,
		EligibleCount: eligible,
		ResolvedCount: resolved,
	}
}
