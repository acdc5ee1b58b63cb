// Package postgres provides PostgreSQL implementations of the domain
// repositories. Ledger writes go through these types, either on the shared
// pool or rebound onto a transaction via WithTx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
)

// ContributionRepository implements contribution.Repository for PostgreSQL
type ContributionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewContributionRepository creates a new PostgreSQL contribution repository
func NewContributionRepository(logger *slog.Logger, db *persistence.PostgresDB) contribution.Repository {
	return &ContributionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx rebinds the repository onto a transaction so contribution writes can
// commit atomically with wallet and catalog updates.
func (r *ContributionRepository) WithTx(tx pgx.Tx) contribution.Repository {
	return &ContributionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new PENDING contribution
func (r *ContributionRepository) Create(ctx context.Context, c *contribution.Contribution) error {
	query := `
		INSERT INTO contributions (id, target_kind, target_id, contributor_id, contributor_email, amount, message, is_anonymous, provider, status, platform_fee_rate, platform_fee_amount, external_payment_id, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.Target.Kind,
		c.Target.ID,
		c.ContributorID,
		c.ContributorEmail,
		c.Amount,
		c.Message,
		c.IsAnonymous,
		c.Provider,
		c.Status,
		c.PlatformFeeRate,
		c.PlatformFee,
		c.ExternalPayment,
		c.CreatedAt,
		c.SettledAt,
	)
	if err != nil {
		r.logger.Error("Failed to create contribution", "error", err)
		return fmt.Errorf("failed to create contribution: %w", err)
	}

	return nil
}

// GetByID retrieves a contribution by its ID
func (r *ContributionRepository) GetByID(ctx context.Context, id uuid.UUID) (*contribution.Contribution, error) {
	query := `
		SELECT id, target_kind, target_id, contributor_id, contributor_email, amount, message, is_anonymous, provider, status, platform_fee_rate, platform_fee_amount, external_payment_id, created_at, settled_at
		FROM contributions
		WHERE id = $1
	`

	c, err := r.scanContribution(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contribution.ErrNotFound{ContributionID: id}
		}
		r.logger.Error("Failed to get contribution", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}

	return c, nil
}

// MarkCompleted transitions a PENDING contribution to COMPLETED with its fee
// split in a single conditional update. A zero row count means another
// delivery already settled the row; the caller must skip its side effects.
func (r *ContributionRepository) MarkCompleted(ctx context.Context, id uuid.UUID, externalPaymentID string, feeRate decimal.Decimal, feeAmount int64) (bool, error) {
	query := `
		UPDATE contributions
		SET status = $1, external_payment_id = $2, platform_fee_rate = $3, platform_fee_amount = $4, settled_at = NOW()
		WHERE id = $5 AND status = $6
	`

	result, err := r.querier.Exec(ctx, query,
		contribution.StatusCompleted,
		externalPaymentID,
		feeRate,
		feeAmount,
		id,
		contribution.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to mark contribution completed", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to mark contribution completed: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkFailed transitions a PENDING contribution to FAILED. Same conditional
// contract as MarkCompleted.
func (r *ContributionRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE contributions
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.querier.Exec(ctx, query, contribution.StatusFailed, id, contribution.StatusPending)
	if err != nil {
		r.logger.Error("Failed to mark contribution failed", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to mark contribution failed: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListVisibleByTarget returns PENDING and COMPLETED contributions for the
// target, newest first. FAILED and REFUNDED rows are filtered in SQL.
func (r *ContributionRepository) ListVisibleByTarget(ctx context.Context, target contribution.Target, limit, offset int) ([]*contribution.Contribution, error) {
	query := `
		SELECT id, target_kind, target_id, contributor_id, contributor_email, amount, message, is_anonymous, provider, status, platform_fee_rate, platform_fee_amount, external_payment_id, created_at, settled_at
		FROM contributions
		WHERE target_kind = $1 AND target_id = $2 AND status IN ($3, $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`

	rows, err := r.querier.Query(ctx, query,
		target.Kind,
		target.ID,
		contribution.StatusPending,
		contribution.StatusCompleted,
		limit,
		offset,
	)
	if err != nil {
		r.logger.Error("Failed to list contributions", "target_id", target.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*contribution.Contribution
	for rows.Next() {
		c, err := r.scanContribution(rows)
		if err != nil {
			r.logger.Error("Failed to scan contribution", "error", err)
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over contributions", "error", err)
		return nil, fmt.Errorf("error iterating over contributions: %w", err)
	}

	return contributions, nil
}

func (r *ContributionRepository) scanContribution(row pgx.Row) (*contribution.Contribution, error) {
	var c contribution.Contribution
	err := row.Scan(
		&c.ID,
		&c.Target.Kind,
		&c.Target.ID,
		&c.ContributorID,
		&c.ContributorEmail,
		&c.Amount,
		&c.Message,
		&c.IsAnonymous,
		&c.Provider,
		&c.Status,
		&c.PlatformFeeRate,
		&c.PlatformFee,
		&c.ExternalPayment,
		&c.CreatedAt,
		&c.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
