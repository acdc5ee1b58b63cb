package contribution

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines contribution persistence operations
type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contribution, error)

	// MarkCompleted atomically transitions the contribution to COMPLETED with
	// its fee fields, but only if it is currently PENDING. It returns whether
	// a row was actually changed: false means another delivery got there
	// first (or the row is terminal) and the caller must not reapply effects.
	MarkCompleted(ctx context.Context, id uuid.UUID, externalPaymentID string, feeRate decimal.Decimal, feeAmount int64) (bool, error)

	// MarkFailed transitions a PENDING contribution to FAILED. Same
	// conditional-update contract as MarkCompleted.
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)

	// ListVisibleByTarget returns PENDING and COMPLETED contributions for a
	// target, newest first. FAILED/REFUNDED rows never appear.
	ListVisibleByTarget(ctx context.Context, target Target, limit, offset int) ([]*Contribution, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrNotFound indicates missing contribution
type ErrNotFound struct {
	ContributionID uuid.UUID
}

func (e ErrNotFound) Error() string {
	return "contribution not found: " + e.ContributionID.String()
}

// Is matches any ErrNotFound when the target carries a nil ID
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	if t.ContributionID == uuid.Nil {
		return true
	}
	return e.ContributionID == t.ContributionID
}

// ErrTerminalState indicates a transition was attempted out of a final state
type ErrTerminalState struct {
	ContributionID uuid.UUID
	Status         Status
}

func (e ErrTerminalState) Error() string {
	return "contribution " + e.ContributionID.String() + " is in terminal state " + string(e.Status)
}

// Is matches any ErrTerminalState when the target carries a nil ID
func (e ErrTerminalState) Is(target error) bool {
	t, ok := target.(ErrTerminalState)
	if !ok {
		return false
	}
	if t.ContributionID == uuid.Nil {
		return true
	}
	return e.ContributionID == t.ContributionID
}

// ErrExceedsRemaining rejects amounts past what the target can still accept
type ErrExceedsRemaining struct {
	TargetID  uuid.UUID
	Remaining int64
}

func (e ErrExceedsRemaining) Error() string {
	return "amount exceeds remaining goal for target " + e.TargetID.String()
}

// Is matches any ErrExceedsRemaining when the target carries a nil ID
func (e ErrExceedsRemaining) Is(target error) bool {
	t, ok := target.(ErrExceedsRemaining)
	if !ok {
		return false
	}
	if t.TargetID == uuid.Nil {
		return true
	}
	return e.TargetID == t.TargetID
}
