package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/earnings"
	"github.com/the-giftist/funding-ledger/internal/domain/fees"
	"github.com/the-giftist/funding-ledger/internal/domain/notification"
	"github.com/the-giftist/funding-ledger/internal/domain/outbox"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/settlement/service"
)

// ContributionSettlerImpl implements the ContributionSettler interface. The
// conditional MarkCompleted/MarkFailed on the PENDING row is the idempotency
// gate; all funding and earnings effects apply only when the gate passes, in
// the same transaction.
type ContributionSettlerImpl struct {
	pgDB         txRunner
	contribRepo  contribution.Repository
	catalogRepo  catalog.Repository
	earningsRepo earnings.Repository
	outboxRepo   outbox.Repository
	logger       *slog.Logger
}

// NewContributionSettler creates a new contribution settler
func NewContributionSettler(
	logger *slog.Logger,
	pgDB txRunner,
	contribRepo contribution.Repository,
	catalogRepo catalog.Repository,
	earningsRepo earnings.Repository,
	outboxRepo outbox.Repository,
) service.ContributionSettler {
	return &ContributionSettlerImpl{
		pgDB:         pgDB,
		contribRepo:  contribRepo,
		catalogRepo:  catalogRepo,
		earningsRepo: earningsRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// Settle completes the contribution and applies its effects: the target's
// funded amount grows by the gross amount, the owner's lifetime-received by
// the net. The fee split is derived from the goal stored on the item, so the
// rate quoted at goal-creation time never drifts.
func (s *ContributionSettlerImpl) Settle(ctx context.Context, event *shared.SettlementEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	c, err := s.contribRepo.GetByID(ctx, event.ContributionID)
	if err != nil {
		if errors.Is(err, contribution.ErrNotFound{}) {
			logger.Error("No contribution for settled payment",
				"event_id", event.ExternalEventID,
				"contribution_id", event.ContributionID.String(),
			)
			return nil
		}
		return fmt.Errorf("failed to load contribution %s: %w", event.ContributionID.String(), err)
	}

	var applied bool
	err = s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		switch c.Target.Kind {
		case contribution.TargetItem:
			applied, err = s.settleItemContribution(ctx, tx, event, c)
		case contribution.TargetEvent:
			applied, err = s.settleEventContribution(ctx, tx, event, c)
		default:
			err = contribution.ErrEmptyTarget
		}
		return err
	})
	if err != nil {
		return err
	}

	if !applied {
		// The offset still commits either way; redelivery cannot fix a
		// terminal row. Anything other than a replay of the same payment
		// is an anomaly for the on-call to chase.
		switch {
		case c.Status == contribution.StatusFailed || c.Status == contribution.StatusRefunded:
			logger.Error("Settled payment arrived for a terminal contribution",
				"event_id", event.ExternalEventID,
				"contribution_id", c.ID.String(),
				"status", string(c.Status),
			)
		case c.Status == contribution.StatusCompleted && c.ExternalPayment != event.ExternalEventID:
			logger.Error("Contribution already settled by a different payment",
				"event_id", event.ExternalEventID,
				"settled_payment_id", c.ExternalPayment,
				"contribution_id", c.ID.String(),
			)
		default:
			logger.Info("Contribution already settled, skipping",
				"event_id", event.ExternalEventID,
				"contribution_id", c.ID.String(),
			)
		}
		return nil
	}

	logger.Info("Contribution settled",
		"event_id", event.ExternalEventID,
		"contribution_id", c.ID.String(),
		"target_kind", string(c.Target.Kind),
		"target_id", c.Target.ID.String(),
		"amount", c.Amount,
	)
	return nil
}

func (s *ContributionSettlerImpl) settleItemContribution(ctx context.Context, tx pgx.Tx, event *shared.SettlementEvent, c *contribution.Contribution) (bool, error) {
	catalogRepo := s.catalogRepo.WithTx(tx)

	item, err := catalogRepo.LockItem(ctx, c.Target.ID)
	if err != nil {
		return false, err
	}

	split := fees.SplitContribution(c.Amount, item.GoalAmount, item.PriceValue)

	applied, err := s.contribRepo.WithTx(tx).MarkCompleted(ctx, c.ID, event.ExternalEventID, split.FeeRate, split.FeeAmount)
	if err != nil || !applied {
		return applied, err
	}

	// Gross drives visible funding progress, net drives the owner's fee tier.
	if err := catalogRepo.IncrementItemFunded(ctx, item.ID, c.Amount); err != nil {
		return false, err
	}
	if err := s.earningsRepo.WithTx(tx).AddLifetimeReceived(ctx, item.OwnerID, split.NetAmount); err != nil {
		return false, err
	}

	received := notification.New(notification.KindContributionReceived, &item.OwnerID, "", split.NetAmount).
		ForContribution(c.ID).ForItem(item.ID).WithCorrelation(event.CorrelationID)
	confirmed := notification.New(notification.KindContributionConfirmed, c.ContributorID, c.ContributorEmail, c.Amount).
		ForContribution(c.ID).ForItem(item.ID).WithCorrelation(event.CorrelationID)

	return true, s.appendNotifications(ctx, tx, received, confirmed)
}

func (s *ContributionSettlerImpl) settleEventContribution(ctx context.Context, tx pgx.Tx, event *shared.SettlementEvent, c *contribution.Contribution) (bool, error) {
	catalogRepo := s.catalogRepo.WithTx(tx)

	ev, err := catalogRepo.GetEvent(ctx, c.Target.ID)
	if err != nil {
		return false, err
	}

	// Events carry no per-item goal, so no fee is embedded: all net.
	split := fees.SplitContribution(c.Amount, nil, nil)

	applied, err := s.contribRepo.WithTx(tx).MarkCompleted(ctx, c.ID, event.ExternalEventID, split.FeeRate, split.FeeAmount)
	if err != nil || !applied {
		return applied, err
	}

	if err := catalogRepo.IncrementEventFunded(ctx, ev.ID, c.Amount); err != nil {
		return false, err
	}
	if err := s.earningsRepo.WithTx(tx).AddLifetimeReceived(ctx, ev.OwnerID, split.NetAmount); err != nil {
		return false, err
	}

	received := notification.New(notification.KindContributionReceived, &ev.OwnerID, "", split.NetAmount).
		ForContribution(c.ID).ForEvent(ev.ID).WithCorrelation(event.CorrelationID)
	confirmed := notification.New(notification.KindContributionConfirmed, c.ContributorID, c.ContributorEmail, c.Amount).
		ForContribution(c.ID).ForEvent(ev.ID).WithCorrelation(event.CorrelationID)

	return true, s.appendNotifications(ctx, tx, received, confirmed)
}

func (s *ContributionSettlerImpl) appendNotifications(ctx context.Context, tx pgx.Tx, notifications ...*notification.Notification) error {
	outboxRepo := s.outboxRepo.WithTx(tx)
	for _, n := range notifications {
		msg, err := outbox.NewMessage(n)
		if err != nil {
			return err
		}
		if err := outboxRepo.Create(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Fail marks the contribution FAILED after the provider reported the payment
// failed or was abandoned. Terminal rows are left untouched.
func (s *ContributionSettlerImpl) Fail(ctx context.Context, event *shared.SettlementEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	applied, err := s.contribRepo.MarkFailed(ctx, event.ContributionID)
	if err != nil {
		return fmt.Errorf("failed to mark contribution %s failed: %w", event.ContributionID.String(), err)
	}

	if !applied {
		// Unknown id or already terminal; either way there is nothing to undo.
		logger.Info("No pending contribution to fail, skipping",
			"event_id", event.ExternalEventID,
			"contribution_id", event.ContributionID.String(),
		)
		return nil
	}

	logger.Info("Contribution marked failed",
		"event_id", event.ExternalEventID,
		"contribution_id", event.ContributionID.String(),
	)
	return nil
}
