package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/domain/subscription"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
)

// SubscriptionRepository implements subscription.Repository for PostgreSQL
type SubscriptionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSubscriptionRepository creates a new PostgreSQL subscription repository
func NewSubscriptionRepository(logger *slog.Logger, db *persistence.PostgresDB) subscription.Repository {
	return &SubscriptionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx rebinds the repository onto a transaction
func (r *SubscriptionRepository) WithTx(tx pgx.Tx) subscription.Repository {
	return &SubscriptionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Activate flips the user's subscription to ACTIVE with the external payment
// id. The conditional guard makes redelivered activation events no-ops: a row
// already activated by the same payment is left untouched and false is
// returned.
func (r *SubscriptionRepository) Activate(ctx context.Context, userID uuid.UUID, externalPaymentID string) (bool, error) {
	query := `
		INSERT INTO subscriptions (id, user_id, status, external_payment_id, activated_at, created_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET status = $3, external_payment_id = $4, activated_at = NOW()
		WHERE subscriptions.external_payment_id IS DISTINCT FROM $4
	`

	result, err := r.querier.Exec(ctx, query,
		uuid.New(),
		userID,
		subscription.StatusActive,
		externalPaymentID,
	)
	if err != nil {
		r.logger.Error("Failed to activate subscription", "user_id", userID.String(), "error", err)
		return false, fmt.Errorf("failed to activate subscription: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByUserID retrieves a user's subscription record
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	query := `
		SELECT id, user_id, status, external_payment_id, activated_at, created_at
		FROM subscriptions
		WHERE user_id = $1
	`

	var sub subscription.Subscription
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Status,
		&sub.ExternalPaymentID,
		&sub.ActivatedAt,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subscription.ErrNotFound{UserID: userID}
		}
		r.logger.Error("Failed to get subscription", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}
