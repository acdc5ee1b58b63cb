package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/domain/earnings"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
)

// EarningsRepository implements earnings.Repository for PostgreSQL
type EarningsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewEarningsRepository creates a new PostgreSQL earnings repository
func NewEarningsRepository(logger *slog.Logger, db *persistence.PostgresDB) earnings.Repository {
	return &EarningsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx rebinds the repository onto a transaction
func (r *EarningsRepository) WithTx(tx pgx.Tx) earnings.Repository {
	return &EarningsRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetLifetimeReceived returns the user's cumulative net received total in
// cents. Users without a row have received nothing.
func (r *EarningsRepository) GetLifetimeReceived(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT lifetime_received
		FROM user_earnings
		WHERE user_id = $1
	`

	var total int64
	err := r.querier.QueryRow(ctx, query, userID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.logger.Error("Failed to get lifetime received", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to get lifetime received: %w", err)
	}

	return total, nil
}

// AddLifetimeReceived adds a net settled amount to the user's counter,
// creating the row on first receipt.
func (r *EarningsRepository) AddLifetimeReceived(ctx context.Context, userID uuid.UUID, netAmount int64) error {
	query := `
		INSERT INTO user_earnings (user_id, lifetime_received, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET lifetime_received = user_earnings.lifetime_received + $2, updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query, userID, netAmount)
	if err != nil {
		r.logger.Error("Failed to add lifetime received", "user_id", userID.String(), "error", err)
		return fmt.Errorf("failed to add lifetime received: %w", err)
	}

	return nil
}
