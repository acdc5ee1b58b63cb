package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/domain/notification"
	"github.com/the-giftist/funding-ledger/internal/domain/outbox"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/domain/subscription"
	"github.com/the-giftist/funding-ledger/internal/settlement/service"
)

// SubscriptionSettlerImpl implements the SubscriptionSettler interface.
// Activation is a single upsert keyed on the external payment id, so a
// redelivered event changes zero rows.
type SubscriptionSettlerImpl struct {
	pgDB             txRunner
	subscriptionRepo subscription.Repository
	outboxRepo       outbox.Repository
	logger           *slog.Logger
}

// NewSubscriptionSettler creates a new subscription settler
func NewSubscriptionSettler(
	logger *slog.Logger,
	pgDB txRunner,
	subscriptionRepo subscription.Repository,
	outboxRepo outbox.Repository,
) service.SubscriptionSettler {
	return &SubscriptionSettlerImpl{
		pgDB:             pgDB,
		subscriptionRepo: subscriptionRepo,
		outboxRepo:       outboxRepo,
		logger:           logger,
	}
}

// Settle activates the subscriber's subscription for the confirmed payment
func (s *SubscriptionSettlerImpl) Settle(ctx context.Context, event *shared.SettlementEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	var applied bool
	err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var err error
		applied, err = s.subscriptionRepo.WithTx(tx).Activate(ctx, event.SubscriberID, event.ExternalEventID)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}

		n := notification.New(notification.KindSubscriptionActivated, recipientID(event.SubscriberID), "", event.AmountPaid).
			WithCorrelation(event.CorrelationID)
		msg, err := outbox.NewMessage(n)
		if err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to activate subscription for %s: %w", event.SubscriberID.String(), err)
	}

	if !applied {
		logger.Info("Subscription already activated by this payment, skipping",
			"event_id", event.ExternalEventID,
			"subscriber_id", event.SubscriberID.String(),
		)
		return nil
	}

	logger.Info("Subscription activated",
		"event_id", event.ExternalEventID,
		"subscriber_id", event.SubscriberID.String(),
	)
	return nil
}
