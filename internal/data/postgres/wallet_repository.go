package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/the-giftist/funding-ledger/internal/domain/wallet"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
)

// WalletRepository implements wallet.Repository for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx rebinds the repository onto a transaction
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new wallet with a zero balance
func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, w.ID, w.UserID, w.Balance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create wallet", "user_id", w.UserID.String(), "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's wallet
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{UserID: userID}
		}
		r.logger.Error("Failed to get wallet", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// LockByUserID obtains a pessimistic lock on the wallet row and returns its
// current state. Must be called within a transaction.
func (r *WalletRepository) LockByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{UserID: userID}
		}
		r.logger.Error("Failed to lock wallet", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	return &w, nil
}

// AdjustBalance applies a signed delta to the wallet balance. The WHERE guard
// refuses updates that would drive the balance negative, surfacing
// ErrInsufficientBalance; a delta against a wallet id that does not exist
// surfaces ErrWalletNotFound instead.
func (r *WalletRepository) AdjustBalance(ctx context.Context, walletID uuid.UUID, delta int64) error {
	query := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND balance + $1 >= 0
	`

	result, err := r.querier.Exec(ctx, query, delta, walletID)
	if err != nil {
		r.logger.Error("Failed to adjust wallet balance", "wallet_id", walletID.String(), "error", err)
		return fmt.Errorf("failed to adjust wallet balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Zero rows means either the guard refused the debit or there is no
		// such wallet. Tell them apart before reporting.
		var userID uuid.UUID
		err := r.querier.QueryRow(ctx, `SELECT user_id FROM wallets WHERE id = $1`, walletID).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Balance adjustment against unknown wallet", "wallet_id", walletID.String(), "delta", delta)
			return wallet.ErrWalletNotFound{}
		}
		if err != nil {
			r.logger.Error("Failed to check wallet after refused adjustment", "wallet_id", walletID.String(), "error", err)
			return fmt.Errorf("failed to check wallet after refused adjustment: %w", err)
		}
		return wallet.ErrInsufficientBalance{WalletID: walletID}
	}

	return nil
}

// CreateTransaction stores a new wallet transaction row
func (r *WalletRepository) CreateTransaction(ctx context.Context, t *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (id, wallet_id, type, amount, status, item_id, session_id, description, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.WalletID,
		t.Type,
		t.Amount,
		t.Status,
		t.ItemID,
		t.SessionID,
		t.Description,
		t.CreatedAt,
		t.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create wallet transaction", "wallet_id", t.WalletID.String(), "error", err)
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}

	return nil
}

// GetTransactionBySessionID retrieves the transaction tied to an external
// checkout session. Settlement uses this to find the pending deposit.
func (r *WalletRepository) GetTransactionBySessionID(ctx context.Context, sessionID string) (*wallet.Transaction, error) {
	query := `
		SELECT id, wallet_id, type, amount, status, item_id, session_id, description, created_at, completed_at
		FROM wallet_transactions
		WHERE session_id = $1
	`

	var t wallet.Transaction
	err := r.querier.QueryRow(ctx, query, sessionID).Scan(
		&t.ID,
		&t.WalletID,
		&t.Type,
		&t.Amount,
		&t.Status,
		&t.ItemID,
		&t.SessionID,
		&t.Description,
		&t.CreatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrTransactionNotFound{SessionID: sessionID}
		}
		r.logger.Error("Failed to get wallet transaction by session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to get wallet transaction by session: %w", err)
	}

	return &t, nil
}

// CompleteTransaction moves a transaction from PENDING to COMPLETED in a
// single conditional update, recording the amount the provider actually
// settled. A zero row count means a duplicate delivery already completed it.
func (r *WalletRepository) CompleteTransaction(ctx context.Context, id uuid.UUID, settledAmount int64) (bool, error) {
	query := `
		UPDATE wallet_transactions
		SET status = $1, amount = $2, completed_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.querier.Exec(ctx, query,
		wallet.TransactionStatusCompleted,
		settledAmount,
		id,
		wallet.TransactionStatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to complete wallet transaction", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to complete wallet transaction: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListTransactions returns the wallet's transactions, newest first
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*wallet.Transaction, error) {
	query := `
		SELECT id, wallet_id, type, amount, status, item_id, session_id, description, created_at, completed_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list wallet transactions", "wallet_id", walletID.String(), "error", err)
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*wallet.Transaction
	for rows.Next() {
		var t wallet.Transaction
		err := rows.Scan(
			&t.ID,
			&t.WalletID,
			&t.Type,
			&t.Amount,
			&t.Status,
			&t.ItemID,
			&t.SessionID,
			&t.Description,
			&t.CreatedAt,
			&t.CompletedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan wallet transaction", "error", err)
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallet transactions", "error", err)
		return nil, fmt.Errorf("error iterating over wallet transactions: %w", err)
	}

	return transactions, nil
}

// SumCompletedAmounts sums the signed amounts of COMPLETED transactions.
// Equality with the stored balance is the wallet's reconciliation check.
func (r *WalletRepository) SumCompletedAmounts(ctx context.Context, walletID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM wallet_transactions
		WHERE wallet_id = $1 AND status = $2
	`

	var sum int64
	err := r.querier.QueryRow(ctx, query, walletID, wallet.TransactionStatusCompleted).Scan(&sum)
	if err != nil {
		r.logger.Error("Failed to sum wallet transactions", "wallet_id", walletID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum wallet transactions: %w", err)
	}

	return sum, nil
}
