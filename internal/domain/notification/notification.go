// Package notification defines the fire-and-forget side effects a settlement
// produces. The settlement core returns these as data; a separate dispatcher
// delivers them outside the transaction and swallows their errors, so a
// notification failure can never roll back or fail a settlement.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the notification template to render downstream
type Kind string

const (
	KindContributionReceived  Kind = "CONTRIBUTION_RECEIVED"  // to the item/event owner
	KindContributionConfirmed Kind = "CONTRIBUTION_CONFIRMED" // to the contributor
	KindDepositConfirmed      Kind = "DEPOSIT_CONFIRMED"
	KindWithdrawalConfirmed   Kind = "WITHDRAWAL_CONFIRMED"
	KindSubscriptionActivated Kind = "SUBSCRIPTION_ACTIVATED"
)

// Notification is one pending side effect. RecipientID may be nil for
// unauthenticated contributors, in which case RecipientEmail is the address.
type Notification struct {
	ID             uuid.UUID  `json:"id" bson:"id"`
	Kind           Kind       `json:"kind" bson:"kind"`
	RecipientID    *uuid.UUID `json:"recipient_id,omitempty" bson:"recipient_id,omitempty"`
	RecipientEmail string     `json:"recipient_email,omitempty" bson:"recipient_email,omitempty"`
	// Amount is the cents value the notification talks about (gross for
	// contributors, net for owners).
	Amount         int64      `json:"amount" bson:"amount"`
	ContributionID *uuid.UUID `json:"contribution_id,omitempty" bson:"contribution_id,omitempty"`
	ItemID         *uuid.UUID `json:"item_id,omitempty" bson:"item_id,omitempty"`
	EventID        *uuid.UUID `json:"event_id,omitempty" bson:"event_id,omitempty"`
	CorrelationID  string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

// New creates a notification of the given kind
func New(kind Kind, recipientID *uuid.UUID, recipientEmail string, amount int64) *Notification {
	return &Notification{
		ID:             uuid.New(),
		Kind:           kind,
		RecipientID:    recipientID,
		RecipientEmail: recipientEmail,
		Amount:         amount,
		CreatedAt:      time.Now(),
	}
}

// ForContribution tags the notification with its contribution
func (n *Notification) ForContribution(id uuid.UUID) *Notification {
	n.ContributionID = &id
	return n
}

// ForItem tags the notification with the funded item
func (n *Notification) ForItem(id uuid.UUID) *Notification {
	n.ItemID = &id
	return n
}

// ForEvent tags the notification with the funded event
func (n *Notification) ForEvent(id uuid.UUID) *Notification {
	n.EventID = &id
	return n
}

// WithCorrelation propagates the request correlation id into the notification
func (n *Notification) WithCorrelation(correlationID string) *Notification {
	n.CorrelationID = correlationID
	return n
}
