package services

import (
	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
)

// BalanceFor is a pure aggregation over a user's deals. Deals in an active
// status count toward locked regardless of the user's side; completed deals
// where the user is the recipient count toward available. The currency is
// taken from the deals (single-currency platform).
func BalanceFor(userID uuid.UUID, deals []models.Deal) models.Balance {
	var b models.Balance
	for _, d := range deals {
		if !d.IsParty(userID) {
			continue
		}
		if b.Currency == "" {
			b.Currency = d.Currency
		}
		switch {
		case models.IsActiveStatus(d.Status):
			b.LockedCents += d.AmountCents
		case d.Status == models.DealStatusCompleted && d.RecipientUserID == userID:
			b.AvailableCents += d.AmountCents
		}
	}
	return b
}
