package models

import (
	"time"

	"github.com/google/uuid"
)

// Funding methods
const (
	FundMethodBank   = "bank"
	FundMethodCrypto = "crypto"
)

// Escrow fund statuses
const (
	FundStatusPending   = "pending"
	FundStatusConfirmed = "confirmed"
	FundStatusRefunded  = "refunded"
)

func IsFundMethod(m string) bool {
	return m == FundMethodBank || m == FundMethodCrypto
}

// EscrowFund is one funding record backing a deal. Reference holds the
// method-specific pointer: a receipt path for bank transfers, a charge id
// or deposit address for crypto.
type EscrowFund struct {
	ID          uuid.UUID  `json:"id"`
	DealID      uuid.UUID  `json:"deal_id"`
	Method      string     `json:"method"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	Reference   *string    `json:"reference,omitempty"`
	FundedAt    *time.Time `json:"funded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
