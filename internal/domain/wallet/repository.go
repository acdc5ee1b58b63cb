package wallet

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines wallet and wallet-transaction persistence operations
type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// LockByUserID acquires a pessimistic lock on the wallet row. Used inside
	// a transaction whenever the balance check and the debit must be atomic.
	LockByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// AdjustBalance applies a signed delta to the wallet balance. The SQL
	// guard refuses to drive the balance negative; callers get
	// ErrInsufficientBalance instead of a partial update.
	AdjustBalance(ctx context.Context, walletID uuid.UUID, delta int64) error

	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransactionBySessionID(ctx context.Context, sessionID string) (*Transaction, error)

	// CompleteTransaction atomically moves a transaction from PENDING to
	// COMPLETED, recording the settled amount. Returns whether a row actually
	// changed; false means a duplicate delivery already completed it.
	CompleteTransaction(ctx context.Context, id uuid.UUID, settledAmount int64) (bool, error)

	ListTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*Transaction, error)

	// SumCompletedAmounts returns the sum of COMPLETED transaction amounts for
	// the wallet. Reconciliation: this must always equal the stored balance.
	SumCompletedAmounts(ctx context.Context, walletID uuid.UUID) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrWalletNotFound indicates the user has no wallet yet
type ErrWalletNotFound struct {
	UserID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found for user: " + e.UserID.String()
}

// Is matches any ErrWalletNotFound when the target carries a nil user ID
func (e ErrWalletNotFound) Is(target error) bool {
	t, ok := target.(ErrWalletNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}

// ErrInsufficientBalance indicates the wallet cannot cover the debit
type ErrInsufficientBalance struct {
	WalletID uuid.UUID
}

func (e ErrInsufficientBalance) Error() string {
	return "insufficient balance in wallet: " + e.WalletID.String()
}

// Is matches any ErrInsufficientBalance when the target carries a nil wallet ID
func (e ErrInsufficientBalance) Is(target error) bool {
	t, ok := target.(ErrInsufficientBalance)
	if !ok {
		return false
	}
	if t.WalletID == uuid.Nil {
		return true
	}
	return e.WalletID == t.WalletID
}

// ErrTransactionNotFound indicates no wallet transaction for the reference
type ErrTransactionNotFound struct {
	SessionID string
}

func (e ErrTransactionNotFound) Error() string {
	return "wallet transaction not found for session: " + e.SessionID
}

// Is matches any ErrTransactionNotFound when the target carries no session
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.SessionID == "" {
		return true
	}
	return e.SessionID == t.SessionID
}

// ErrDepositOutOfRange rejects deposits outside the configured bounds
type ErrDepositOutOfRange struct {
	Min int64
	Max int64
}

func (e ErrDepositOutOfRange) Error() string {
	return "deposit amount must be between " + strconv.FormatInt(e.Min, 10) + " and " + strconv.FormatInt(e.Max, 10) + " cents"
}

// Is matches any ErrDepositOutOfRange regardless of bounds
func (e ErrDepositOutOfRange) Is(target error) bool {
	_, ok := target.(ErrDepositOutOfRange)
	return ok
}
