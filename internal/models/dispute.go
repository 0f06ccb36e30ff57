package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute statuses
const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

// Resolution actions
const (
	ResolutionRefundBuyer   = "refund_buyer"
	ResolutionReleaseSeller = "release_seller"
)

func IsResolutionAction(a string) bool {
	return a == ResolutionRefundBuyer || a == ResolutionReleaseSeller
}

type Dispute struct {
	ID             uuid.UUID  `json:"id"`
	DealID         uuid.UUID  `json:"deal_id"`
	OpenedByUserID uuid.UUID  `json:"opened_by_user_id"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	Resolution     *string    `json:"resolution,omitempty"`
	ResolutionText *string    `json:"resolution_text,omitempty"`
	ResolverUserID *uuid.UUID `json:"resolver_user_id,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
