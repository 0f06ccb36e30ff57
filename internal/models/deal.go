package models

import (
	"time"

	"github.com/google/uuid"
)

// Deal statuses
const (
	DealStatusDraft     = "draft"
	DealStatusActive    = "active"
	DealStatusFunding   = "funding"
	DealStatusFunded    = "funded"
	DealStatusInReview  = "in_review"
	DealStatusCompleted = "completed"
	DealStatusDisputed  = "disputed"
	DealStatusRefunded  = "refunded"
)

// ValidDealTransitions gates party-triggered transitions: from -> []to.
// Administrators may override to any settable status regardless of this
// table; disputed and refunded are reachable only through the dispute flow.
var ValidDealTransitions = map[string][]string{
	DealStatusDraft:     {DealStatusActive, DealStatusFunding},
	DealStatusActive:    {DealStatusFunding},
	DealStatusFunding:   {DealStatusFunded},
	DealStatusFunded:    {DealStatusInReview, DealStatusDisputed},
	DealStatusInReview:  {DealStatusCompleted, DealStatusDisputed},
	DealStatusDisputed:  {DealStatusCompleted, DealStatusRefunded},
	DealStatusCompleted: {},
	DealStatusRefunded:  {},
}

// SettableDealStatuses are the statuses an administrator may set directly.
var SettableDealStatuses = []string{
	DealStatusDraft,
	DealStatusActive,
	DealStatusFunding,
	DealStatusFunded,
	DealStatusInReview,
	DealStatusCompleted,
}

// ActiveDealStatuses are the statuses whose amounts count as locked in a
// balance aggregation.
var ActiveDealStatuses = []string{
	DealStatusActive,
	DealStatusFunding,
	DealStatusFunded,
	DealStatusInReview,
	DealStatusDisputed,
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidDealTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsDealStatus(s string) bool {
	_, ok := ValidDealTransitions[s]
	return ok
}

func IsSettableStatus(s string) bool {
	for _, st := range SettableDealStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func IsActiveStatus(s string) bool {
	for _, st := range ActiveDealStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Deal struct {
	ID              uuid.UUID `json:"id"`
	InitiatorUserID uuid.UUID `json:"initiator_user_id"`
	RecipientUserID uuid.UUID `json:"recipient_user_id"`
	Status          string    `json:"status"`
	Title           *string   `json:"title,omitempty"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	ReceiptRef      *string   `json:"receipt_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsParty reports whether userID is the initiator or the recipient.
func (d *Deal) IsParty(userID uuid.UUID) bool {
	return d.InitiatorUserID == userID || d.RecipientUserID == userID
}
