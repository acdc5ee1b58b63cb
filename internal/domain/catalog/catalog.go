// Package catalog exposes the funding-relevant slice of the item/event store.
// Item and event creation and editing live elsewhere; the ledger only reads
// price/goal/purchase state and writes funded amounts.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Item carries the fields the funding ledger depends on. FundedAmount is only
// ever incremented by a settled contribution or a wallet-funding transfer;
// GoalAmount is frozen once set for a given price.
type Item struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	PriceValue   *int64    `json:"price_value,omitempty"` // Cents; nil when unpriced
	GoalAmount   *int64    `json:"goal_amount,omitempty"` // Cents; nil when no fundable goal
	FundedAmount int64     `json:"funded_amount"`         // Cents, monotonically non-decreasing
	IsPurchased  bool      `json:"is_purchased"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Remaining returns how much the item can still accept, or false when the
// goal is unset and funding is unbounded.
func (i *Item) Remaining() (int64, bool) {
	if i.GoalAmount == nil {
		return 0, false
	}
	remaining := *i.GoalAmount - i.FundedAmount
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// FullyFunded reports whether the item has reached its goal. Items without a
// goal are never fully funded.
func (i *Item) FullyFunded() bool {
	remaining, bounded := i.Remaining()
	return bounded && remaining == 0
}

// Event is the aggregate-level funding target: no per-item goal, just a
// running funded total.
type Event struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	FundedAmount int64     `json:"funded_amount"` // Cents
	UpdatedAt    time.Time `json:"updated_at"`
}

// ErrAlreadyPurchased rejects funding attempts against a purchased item
type ErrAlreadyPurchased struct {
	ItemID uuid.UUID
}

func (e ErrAlreadyPurchased) Error() string {
	return "item already purchased: " + e.ItemID.String()
}

// Is matches any ErrAlreadyPurchased when the target carries a nil ID
func (e ErrAlreadyPurchased) Is(target error) bool {
	t, ok := target.(ErrAlreadyPurchased)
	if !ok {
		return false
	}
	if t.ItemID == uuid.Nil {
		return true
	}
	return e.ItemID == t.ItemID
}

// ErrAlreadyFunded rejects funding attempts against an item at its goal
type ErrAlreadyFunded struct {
	ItemID uuid.UUID
}

func (e ErrAlreadyFunded) Error() string {
	return "item already fully funded: " + e.ItemID.String()
}

// Is matches any ErrAlreadyFunded when the target carries a nil ID
func (e ErrAlreadyFunded) Is(target error) bool {
	t, ok := target.(ErrAlreadyFunded)
	if !ok {
		return false
	}
	if t.ItemID == uuid.Nil {
		return true
	}
	return e.ItemID == t.ItemID
}
