package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
)

// CatalogRepository implements catalog.Repository for PostgreSQL. The ledger
// only reads funding fields and applies funded-amount increments; item and
// event lifecycle belongs to another service sharing the schema.
type CatalogRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCatalogRepository creates a new PostgreSQL catalog repository
func NewCatalogRepository(logger *slog.Logger, db *persistence.PostgresDB) catalog.Repository {
	return &CatalogRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx rebinds the repository onto a transaction
func (r *CatalogRepository) WithTx(tx pgx.Tx) catalog.Repository {
	return &CatalogRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetItem retrieves an item's funding fields
func (r *CatalogRepository) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	query := `
		SELECT id, owner_id, price_value, goal_amount, funded_amount, is_purchased, updated_at
		FROM items
		WHERE id = $1
	`

	var item catalog.Item
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.OwnerID,
		&item.PriceValue,
		&item.GoalAmount,
		&item.FundedAmount,
		&item.IsPurchased,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to get item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

// LockItem obtains a pessimistic lock on the item row. Must be called within
// a transaction; wallet funding uses it to make the remaining-amount check
// and the debit atomic.
func (r *CatalogRepository) LockItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	query := `
		SELECT id, owner_id, price_value, goal_amount, funded_amount, is_purchased, updated_at
		FROM items
		WHERE id = $1
		FOR UPDATE
	`

	var item catalog.Item
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.OwnerID,
		&item.PriceValue,
		&item.GoalAmount,
		&item.FundedAmount,
		&item.IsPurchased,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to lock item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}

	return &item, nil
}

// IncrementItemFunded adds the gross contribution amount to the item's
// funded total. Over-funding is allowed so the increment is unconditional.
func (r *CatalogRepository) IncrementItemFunded(ctx context.Context, id uuid.UUID, amount int64) error {
	query := `
		UPDATE items
		SET funded_amount = funded_amount + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, amount, id)
	if err != nil {
		r.logger.Error("Failed to increment item funded amount", "id", id.String(), "error", err)
		return fmt.Errorf("failed to increment item funded amount: %w", err)
	}

	if result.RowsAffected() == 0 {
		return catalog.ErrItemNotFound{ItemID: id}
	}

	return nil
}

// SetItemGoal records a freshly quoted goal for an item
func (r *CatalogRepository) SetItemGoal(ctx context.Context, id uuid.UUID, goalAmount *int64) error {
	query := `
		UPDATE items
		SET goal_amount = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, goalAmount, id)
	if err != nil {
		r.logger.Error("Failed to set item goal", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set item goal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return catalog.ErrItemNotFound{ItemID: id}
	}

	return nil
}

// GetEvent retrieves an event's funding fields
func (r *CatalogRepository) GetEvent(ctx context.Context, id uuid.UUID) (*catalog.Event, error) {
	query := `
		SELECT id, owner_id, funded_amount, updated_at
		FROM events
		WHERE id = $1
	`

	var event catalog.Event
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.OwnerID,
		&event.FundedAmount,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrEventNotFound{EventID: id}
		}
		r.logger.Error("Failed to get event", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

// IncrementEventFunded adds the gross contribution amount to the event's
// funded total. Events have no goal, so the increment is unconditional.
func (r *CatalogRepository) IncrementEventFunded(ctx context.Context, id uuid.UUID, amount int64) error {
	query := `
		UPDATE events
		SET funded_amount = funded_amount + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, amount, id)
	if err != nil {
		r.logger.Error("Failed to increment event funded amount", "id", id.String(), "error", err)
		return fmt.Errorf("failed to increment event funded amount: %w", err)
	}

	if result.RowsAffected() == 0 {
		return catalog.ErrEventNotFound{EventID: id}
	}

	return nil
}
