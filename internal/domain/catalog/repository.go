package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository reads funding fields and applies funded-amount increments. The
// ledger never creates or edits items/events through this interface.
type Repository interface {
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)

	// LockItem acquires a pessimistic lock on the item row for atomic
	// funded-amount updates inside a transaction.
	LockItem(ctx context.Context, id uuid.UUID) (*Item, error)

	// IncrementItemFunded adds the gross amount to the item's funded total.
	IncrementItemFunded(ctx context.Context, id uuid.UUID, amount int64) error

	// SetItemGoal records a freshly quoted goal for an item. Used when a price
	// is set or edited; the goal stays frozen otherwise.
	SetItemGoal(ctx context.Context, id uuid.UUID, goalAmount *int64) error

	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	IncrementEventFunded(ctx context.Context, id uuid.UUID, amount int64) error

	WithTx(tx pgx.Tx) Repository
}

// ErrItemNotFound indicates missing item
type ErrItemNotFound struct {
	ItemID uuid.UUID
}

func (e ErrItemNotFound) Error() string {
	return "item not found: " + e.ItemID.String()
}

// Is matches any ErrItemNotFound when the target carries a nil ID
func (e ErrItemNotFound) Is(target error) bool {
	t, ok := target.(ErrItemNotFound)
	if !ok {
		return false
	}
	if t.ItemID == uuid.Nil {
		return true
	}
	return e.ItemID == t.ItemID
}

// ErrEventNotFound indicates missing event
type ErrEventNotFound struct {
	EventID uuid.UUID
}

func (e ErrEventNotFound) Error() string {
	return "event not found: " + e.EventID.String()
}

// Is matches any ErrEventNotFound when the target carries a nil ID
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}

// ErrNotOwned indicates the item does not belong to the acting user
type ErrNotOwned struct {
	ItemID uuid.UUID
	UserID uuid.UUID
}

func (e ErrNotOwned) Error() string {
	return "item " + e.ItemID.String() + " is not owned by user " + e.UserID.String()
}
