package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/config"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/notification"
	"github.com/the-giftist/funding-ledger/internal/domain/outbox"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/domain/wallet"
	"github.com/the-giftist/funding-ledger/internal/payments"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
)

// txRunner is the slice of persistence.PostgresDB the service needs; tests
// substitute a stub that hands the callback a mock transaction.
type txRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// WalletServiceImpl implements the WalletService interface
type WalletServiceImpl struct {
	pgDB        txRunner
	walletRepo  wallet.Repository
	catalogRepo catalog.Repository
	outboxRepo  outbox.Repository
	checkout    payments.CheckoutProvider
	limits      config.WalletConfig
	logger      *slog.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	logger *slog.Logger,
	pgDB *persistence.PostgresDB,
	walletRepo wallet.Repository,
	catalogRepo catalog.Repository,
	outboxRepo outbox.Repository,
	checkout payments.CheckoutProvider,
	limits config.WalletConfig,
) WalletService {
	return &WalletServiceImpl{
		pgDB:        pgDB,
		walletRepo:  walletRepo,
		catalogRepo: catalogRepo,
		outboxRepo:  outboxRepo,
		checkout:    checkout,
		limits:      limits,
		logger:      logger,
	}
}

// GetOrCreateWallet returns the user's wallet, creating an empty one on first
// access. A concurrent first access may win the insert; the losing call
// re-reads and returns the winner's row.
func (s *WalletServiceImpl) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	w, err := s.walletRepo.GetByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, wallet.ErrWalletNotFound{}) {
		s.logger.Error("Failed to load wallet", "user_id", userID.String(), "error", err)
		return nil, err
	}

	w = wallet.NewWallet(userID)
	if createErr := s.walletRepo.Create(ctx, w); createErr != nil {
		if existing, getErr := s.walletRepo.GetByUserID(ctx, userID); getErr == nil {
			return existing, nil
		}
		s.logger.Error("Failed to create wallet", "user_id", userID.String(), "error", createErr)
		return nil, createErr
	}

	s.logger.Info("Wallet created", "wallet_id", w.ID.String(), "user_id", userID.String())
	return w, nil
}

// RequestDeposit opens a hosted checkout session for the amount and records a
// PENDING deposit transaction tagged with the session id. The balance is
// credited only when the settlement webhook confirms the payment.
func (s *WalletServiceImpl) RequestDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*DepositIntent, error) {
	if amount < s.limits.MinDeposit || amount > s.limits.MaxDeposit {
		return nil, wallet.ErrDepositOutOfRange{Min: s.limits.MinDeposit, Max: s.limits.MaxDeposit}
	}

	w, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The session is opened before the PENDING row exists, but the redirect
	// URL leaves this function only after the insert below succeeds. An
	// unrecorded session is never handed to the user, so it is never paid.
	// The settlement worker relies on that ordering: it permanently
	// acknowledges settled sessions it has no row for.
	session, err := s.checkout.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		Kind:         shared.SettlementWalletDeposit,
		AmountCents:  amount,
		ReferenceID:  w.ID,
		SubscriberID: userID,
	})
	if err != nil {
		s.logger.Error("Failed to create deposit checkout session",
			"wallet_id", w.ID.String(),
			"amount", amount,
			"error", err,
		)
		return nil, err
	}

	txn, err := wallet.NewDepositTransaction(w.ID, amount, session.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.walletRepo.CreateTransaction(ctx, txn); err != nil {
		s.logger.Error("Failed to record pending deposit",
			"wallet_id", w.ID.String(),
			"session_id", session.SessionID,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Deposit requested",
		"wallet_id", w.ID.String(),
		"transaction_id", txn.ID.String(),
		"session_id", session.SessionID,
		"amount", amount,
	)
	return &DepositIntent{Transaction: txn, SessionID: session.SessionID, RedirectURL: session.RedirectURL}, nil
}

// FundItemFromWallet moves balance onto an item the user owns. The wallet and
// item rows are locked in one database transaction; the SQL balance guard
// makes the debit and the funded-amount credit atomic.
func (s *WalletServiceImpl) FundItemFromWallet(ctx context.Context, userID, itemID uuid.UUID, amount int64) (*wallet.Transaction, error) {
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}

	var txn *wallet.Transaction
	err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		walletRepo := s.walletRepo.WithTx(tx)
		catalogRepo := s.catalogRepo.WithTx(tx)

		w, err := walletRepo.LockByUserID(ctx, userID)
		if err != nil {
			return err
		}

		item, err := catalogRepo.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.OwnerID != userID {
			return catalog.ErrNotOwned{ItemID: itemID, UserID: userID}
		}
		if item.IsPurchased {
			return catalog.ErrAlreadyPurchased{ItemID: itemID}
		}
		if item.FullyFunded() {
			return catalog.ErrAlreadyFunded{ItemID: itemID}
		}
		if remaining, bounded := item.Remaining(); bounded && amount > remaining {
			return contribution.ErrExceedsRemaining{TargetID: itemID, Remaining: remaining}
		}

		if err := walletRepo.AdjustBalance(ctx, w.ID, -amount); err != nil {
			return err
		}
		if err := catalogRepo.IncrementItemFunded(ctx, itemID, amount); err != nil {
			return err
		}

		txn, err = wallet.NewFundItemTransaction(w.ID, itemID, amount)
		if err != nil {
			return err
		}
		return walletRepo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		s.logger.Error("Failed to fund item from wallet",
			"user_id", userID.String(),
			"item_id", itemID.String(),
			"amount", amount,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Item funded from wallet",
		"user_id", userID.String(),
		"item_id", itemID.String(),
		"transaction_id", txn.ID.String(),
		"amount", amount,
	)
	return txn, nil
}

// Withdraw debits the balance for payout. The notification outbox row is
// appended in the same transaction so the confirmation is delivered exactly
// when the debit commits.
func (s *WalletServiceImpl) Withdraw(ctx context.Context, userID uuid.UUID, amount int64) (*wallet.Transaction, error) {
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}

	var txn *wallet.Transaction
	err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		walletRepo := s.walletRepo.WithTx(tx)

		w, err := walletRepo.LockByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := walletRepo.AdjustBalance(ctx, w.ID, -amount); err != nil {
			return err
		}

		txn, err = wallet.NewWithdrawalTransaction(w.ID, amount)
		if err != nil {
			return err
		}
		if err := walletRepo.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(notification.New(notification.KindWithdrawalConfirmed, &userID, "", amount))
		if err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		s.logger.Error("Failed to withdraw from wallet",
			"user_id", userID.String(),
			"amount", amount,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Withdrawal recorded",
		"user_id", userID.String(),
		"transaction_id", txn.ID.String(),
		"amount", amount,
	)
	return txn, nil
}

// ListTransactions returns the wallet's ledger rows, newest first
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*wallet.Transaction, error) {
	w, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage
	return s.walletRepo.ListTransactions(ctx, w.ID, perPage, offset)
}
