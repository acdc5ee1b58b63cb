package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownSettlementKind = errors.New("unknown settlement kind")
	ErrInvalidProvider       = errors.New("invalid payment provider")
)

// SettlementEvent is the internal envelope for a provider's confirmed-payment
// callback. The webhook boundary verifies the provider signature, maps the
// provider payload into this shape and publishes it to Kafka; the settlement
// worker consumes it. ExternalEventID is the provider's own event/session
// identifier and is the dedup key persisted on the row it settles.
type SettlementEvent struct {
	ExternalEventID string          `json:"external_event_id"`
	Provider        PaymentProvider `json:"provider"`
	Kind            SettlementKind  `json:"kind"`
	// AmountPaid is the settled gross amount in cents as reported by the provider.
	AmountPaid int64 `json:"amount_paid"`
	// ContributionID is set for item/event contribution and payment_failed events.
	ContributionID uuid.UUID `json:"contribution_id,omitempty"`
	// SessionID is set for wallet deposit events and refers to the checkout
	// session recorded on the PENDING wallet transaction.
	SessionID string `json:"session_id,omitempty"`
	// SubscriberID identifies the paying user for subscription and wallet
	// deposit events. The checkout metadata round-trips it through the provider.
	SubscriberID  uuid.UUID `json:"subscriber_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
