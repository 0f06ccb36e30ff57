package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity action tags. Status changes use StatusChangedAction, which embeds
// the new status ("status_changed_to_funded").
const (
	ActionDealCreated      = "deal_created"
	ActionDepositSubmitted = "deposit_submitted"
	ActionDisputeOpened    = "dispute_opened"
	ActionDisputeResolved  = "dispute_resolved"
)

func StatusChangedAction(status string) string {
	return "status_changed_to_" + status
}

// ActivityLog is an immutable audit record, appended inside the same atomic
// unit as the state change it describes.
type ActivityLog struct {
	ID          uuid.UUID  `json:"id"`
	DealID      uuid.UUID  `json:"deal_id"`
	ActorUserID *uuid.UUID `json:"actor_user_id,omitempty"`
	ActorType   string     `json:"actor_type"` // user/admin/system
	Action      string     `json:"action"`
	Meta        any        `json:"meta,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
