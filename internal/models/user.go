package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a local profile mirror of an identity-provider account. Phone is
// an optional secondary contact field, not part of authentication.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     *string   `json:"username,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// Balance is the derived wallet view for one user. It is recomputed from
// deal records on every query; no stored figure is authoritative.
type Balance struct {
	LockedCents    int64  `json:"locked_cents"`
	AvailableCents int64  `json:"available_cents"`
	Currency       string `json:"currency"`
}
