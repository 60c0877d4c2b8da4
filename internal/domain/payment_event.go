package domain

import "time"

// PaymentEvent is an immutable log of provider webhook events, kept for
// reconciliation and debugging.
type PaymentEvent struct {
	ID               string
	UserID           *string
	EventType        string
	ProviderObjectID string
	Payload          map[string]any
	CreatedAt        time.Time
}
