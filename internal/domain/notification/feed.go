package notification

import (
	"context"

	"github.com/google/uuid"
)

// Feed is the append-only activity projection of dispatched notifications.
// It is best-effort: feed failures never roll back the ledger writes the
// notification describes.
type Feed interface {
	// Append records a dispatched notification. Re-appending the same
	// notification ID is a no-op so outbox retries stay safe.
	Append(ctx context.Context, n *Notification) error

	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*Notification, error)
}
