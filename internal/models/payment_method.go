package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is a saved disbursement target owned by a user: either bank
// account details or a TON wallet address.
type PaymentMethod struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Method        string    `json:"method"` // bank / crypto
	Label         *string   `json:"label,omitempty"`
	BankName      *string   `json:"bank_name,omitempty"`
	AccountNumber *string   `json:"account_number,omitempty"`
	CryptoAddress *string   `json:"crypto_address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
