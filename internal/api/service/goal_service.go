package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/domain/earnings"
	"github.com/the-giftist/funding-ledger/internal/domain/fees"
)

// GoalServiceImpl implements the GoalService interface
type GoalServiceImpl struct {
	catalogRepo  catalog.Repository
	earningsRepo earnings.Repository
	policy       fees.Policy
	logger       *slog.Logger
}

// NewGoalService creates a new goal service
func NewGoalService(
	logger *slog.Logger,
	catalogRepo catalog.Repository,
	earningsRepo earnings.Repository,
	policy fees.Policy,
) GoalService {
	return &GoalServiceImpl{
		catalogRepo:  catalogRepo,
		earningsRepo: earningsRepo,
		policy:       policy,
		logger:       logger,
	}
}

// PriceItemGoal quotes a goal for the item at the given price against the
// owner's lifetime-received total and freezes it onto the item. The quote
// embeds the fee permanently; later policy changes never touch stored goals.
func (s *GoalServiceImpl) PriceItemGoal(ctx context.Context, itemID uuid.UUID, priceCents int64) (*fees.Quote, error) {
	item, err := s.catalogRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	lifetime, err := s.earningsRepo.GetLifetimeReceived(ctx, item.OwnerID)
	if err != nil {
		s.logger.Error("Failed to load lifetime received",
			"owner_id", item.OwnerID.String(),
			"error", err,
		)
		return nil, err
	}

	quote := s.policy.QuoteGoal(priceCents, lifetime)
	if err := s.catalogRepo.SetItemGoal(ctx, itemID, quote.GoalAmount); err != nil {
		s.logger.Error("Failed to store item goal", "item_id", itemID.String(), "error", err)
		return nil, err
	}

	if quote.GoalAmount != nil {
		s.logger.Info("Item goal set",
			"item_id", itemID.String(),
			"goal_amount", *quote.GoalAmount,
			"fee_rate", quote.FeeRate.String(),
		)
	} else {
		s.logger.Info("Item goal cleared", "item_id", itemID.String())
	}
	return &quote, nil
}
