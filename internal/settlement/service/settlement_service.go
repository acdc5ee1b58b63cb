package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

// SettlementServiceImpl routes settlement events to their branch. Each branch
// owns its own idempotency gate, so redelivered events pass through here
// without any dedup state in the dispatcher itself.
type SettlementServiceImpl struct {
	deposits      DepositSettler
	contributions ContributionSettler
	subscriptions SubscriptionSettler
	logger        *slog.Logger
}

// NewSettlementService creates a new settlement dispatcher
func NewSettlementService(
	logger *slog.Logger,
	deposits DepositSettler,
	contributions ContributionSettler,
	subscriptions SubscriptionSettler,
) SettlementService {
	return &SettlementServiceImpl{
		deposits:      deposits,
		contributions: contributions,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// ProcessEvent settles a single confirmed-payment event. A nil return
// acknowledges the event to the consumer; an error leaves the offset
// uncommitted so the event is redelivered.
func (s *SettlementServiceImpl) ProcessEvent(ctx context.Context, event *shared.SettlementEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Processing settlement event",
		"event_id", event.ExternalEventID,
		"kind", string(event.Kind),
		"provider", string(event.Provider),
		"amount_paid", event.AmountPaid,
	)

	var err error
	switch event.Kind {
	case shared.SettlementWalletDeposit:
		err = s.deposits.Settle(ctx, event)
	case shared.SettlementItemContribution, shared.SettlementEventContribution:
		err = s.contributions.Settle(ctx, event)
	case shared.SettlementPaymentFailed:
		err = s.contributions.Fail(ctx, event)
	case shared.SettlementSubscription:
		err = s.subscriptions.Settle(ctx, event)
	default:
		// Unknown kinds are acknowledged without effect; the webhook boundary
		// already filters, this only catches versions skew between binaries.
		logger.Warn("Ignoring settlement event of unknown kind",
			"event_id", event.ExternalEventID,
			"kind", string(event.Kind),
		)
		return nil
	}

	if err != nil {
		logger.Error("Failed to settle event",
			"event_id", event.ExternalEventID,
			"kind", string(event.Kind),
			"error", err,
		)
		return fmt.Errorf("settling event %s failed: %w", event.ExternalEventID, err)
	}

	logger.Info("Settlement event processed", "event_id", event.ExternalEventID, "kind", string(event.Kind))
	return nil
}
