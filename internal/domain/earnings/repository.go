// Package earnings tracks each user's lifetime-received total: the cumulative
// net (post-fee) funds received across all completed contributions. The total
// drives fee-tier eligibility in the fees package and is mutated only by
// settlement.
package earnings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages lifetime-received counters
type Repository interface {
	// GetLifetimeReceived returns the user's total in cents; zero for users
	// who have never received funds.
	GetLifetimeReceived(ctx context.Context, userID uuid.UUID) (int64, error)

	// AddLifetimeReceived adds a net settled amount to the user's counter,
	// creating the row on first receipt. The counter never decreases.
	AddLifetimeReceived(ctx context.Context, userID uuid.UUID, netAmount int64) error

	WithTx(tx pgx.Tx) Repository
}
