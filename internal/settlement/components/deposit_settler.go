package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/domain/notification"
	"github.com/the-giftist/funding-ledger/internal/domain/outbox"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/domain/wallet"
	"github.com/the-giftist/funding-ledger/internal/settlement/service"
)

// txRunner is the slice of persistence.PostgresDB the settlers need
type txRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// DepositSettlerImpl implements the DepositSettler interface. The conditional
// complete on the PENDING transaction is the idempotency gate: a redelivered
// event changes zero rows and applies no balance credit.
type DepositSettlerImpl struct {
	pgDB       txRunner
	walletRepo wallet.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewDepositSettler creates a new deposit settler
func NewDepositSettler(
	logger *slog.Logger,
	pgDB txRunner,
	walletRepo wallet.Repository,
	outboxRepo outbox.Repository,
) service.DepositSettler {
	return &DepositSettlerImpl{
		pgDB:       pgDB,
		walletRepo: walletRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Settle credits the wallet for a confirmed deposit session. The settled
// amount is the provider-reported amount paid, which wins over the requested
// amount if they differ.
func (s *DepositSettlerImpl) Settle(ctx context.Context, event *shared.SettlementEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	txn, err := s.walletRepo.GetTransactionBySessionID(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, wallet.ErrTransactionNotFound{}) {
			// No PENDING row for this session. RequestDeposit withholds
			// the redirect URL unless the row insert succeeded, so a paid
			// session without a row should not happen. Retrying cannot
			// help; acknowledge and flag it.
			logger.Error("No deposit transaction for settled session",
				"event_id", event.ExternalEventID,
				"session_id", event.SessionID,
			)
			return nil
		}
		return fmt.Errorf("failed to load deposit transaction for session %s: %w", event.SessionID, err)
	}

	var applied bool
	err = s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		walletRepo := s.walletRepo.WithTx(tx)

		var err error
		applied, err = walletRepo.CompleteTransaction(ctx, txn.ID, event.AmountPaid)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}

		if err := walletRepo.AdjustBalance(ctx, txn.WalletID, event.AmountPaid); err != nil {
			return err
		}

		n := notification.New(notification.KindDepositConfirmed, recipientID(event.SubscriberID), "", event.AmountPaid).
			WithCorrelation(event.CorrelationID)
		msg, err := outbox.NewMessage(n)
		if err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		return err
	}

	if !applied {
		logger.Info("Deposit already settled, skipping",
			"event_id", event.ExternalEventID,
			"transaction_id", txn.ID.String(),
		)
		return nil
	}

	logger.Info("Deposit settled",
		"event_id", event.ExternalEventID,
		"transaction_id", txn.ID.String(),
		"wallet_id", txn.WalletID.String(),
		"amount", event.AmountPaid,
	)
	return nil
}

// recipientID maps a possibly-absent user id to a notification recipient
func recipientID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
