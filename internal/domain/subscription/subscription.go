// Package subscription holds the recurring-billing record touched by the
// settlement dispatcher. Subscriptions are not money-ledger-bearing; settling
// one is a status flip behind the same idempotency gate as the other branches.
package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Status defines subscription states
type Status string

const (
	StatusInactive Status = "INACTIVE"
	StatusActive   Status = "ACTIVE"
)

// Subscription is a user's recurring-billing record
type Subscription struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Status            Status     `json:"status"`
	ExternalPaymentID string     `json:"external_payment_id,omitempty"`
	ActivatedAt       *time.Time `json:"activated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Repository manages subscription persistence
type Repository interface {
	// Activate flips the user's subscription to ACTIVE, recording the
	// external payment id, unless it was already activated by the same
	// payment. Returns whether a row actually changed.
	Activate(ctx context.Context, userID uuid.UUID, externalPaymentID string) (bool, error)

	GetByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrNotFound indicates the user has no subscription record
type ErrNotFound struct {
	UserID uuid.UUID
}

func (e ErrNotFound) Error() string {
	return "subscription not found for user: " + e.UserID.String()
}

// Is matches any ErrNotFound when the target carries a nil user ID
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}
