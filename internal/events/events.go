package events

import "context"

// DealStream is the pub/sub channel carrying deal lifecycle events.
const DealStream = "events:deal"

// Event types
const (
	EventDealStatusChanged = "deal_status_changed"
	EventDepositSubmitted  = "deposit_submitted"
	EventDisputeOpened     = "dispute_opened"
	EventDisputeResolved   = "dispute_resolved"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
