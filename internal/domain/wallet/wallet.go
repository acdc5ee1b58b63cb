package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrEmptySession  = errors.New("checkout session reference cannot be empty")
)

// TransactionType defines wallet ledger entry types
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeFundItem   TransactionType = "FUND_ITEM"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// TransactionStatus defines wallet ledger entry states
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Wallet is the custodial balance for a single user, created lazily on first
// access. Balance is in cents and must never go negative; it always equals
// the sum of COMPLETED transaction amounts for the wallet.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"` // Stored in cents/minor units
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWallet creates an empty wallet for the user
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now()
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transaction is an append-only wallet ledger row. Amount is signed: deposits
// positive, item funding and withdrawals negative. Only COMPLETED rows count
// toward the balance.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	WalletID    uuid.UUID         `json:"wallet_id"`
	Type        TransactionType   `json:"type"`
	Amount      int64             `json:"amount"` // Signed, in cents/minor units
	Status      TransactionStatus `json:"status"`
	ItemID      *uuid.UUID        `json:"item_id,omitempty"`
	SessionID   string            `json:"session_id,omitempty"` // External checkout session reference
	Description string            `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewDepositTransaction creates the PENDING row recorded before the external
// checkout session is requested. The balance is untouched until settlement.
func NewDepositTransaction(walletID uuid.UUID, amount int64, sessionID string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if sessionID == "" {
		return nil, ErrEmptySession
	}

	return &Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Type:        TransactionTypeDeposit,
		Amount:      amount,
		Status:      TransactionStatusPending,
		SessionID:   sessionID,
		Description: "wallet deposit",
		CreatedAt:   time.Now(),
	}, nil
}

// NewFundItemTransaction creates the COMPLETED debit row for a wallet-to-item
// transfer. There is no PENDING intermediate for same-process transfers.
func NewFundItemTransaction(walletID, itemID uuid.UUID, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Type:        TransactionTypeFundItem,
		Amount:      -amount,
		Status:      TransactionStatusCompleted,
		ItemID:      &itemID,
		Description: "funded item from wallet",
		CreatedAt:   now,
		CompletedAt: &now,
	}, nil
}

// NewWithdrawalTransaction creates the COMPLETED debit row for a withdrawal.
func NewWithdrawalTransaction(walletID uuid.UUID, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Type:        TransactionTypeWithdrawal,
		Amount:      -amount,
		Status:      TransactionStatusCompleted,
		Description: "wallet withdrawal",
		CreatedAt:   now,
		CompletedAt: &now,
	}, nil
}
