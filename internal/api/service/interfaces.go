package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/fees"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/domain/wallet"
	"github.com/the-giftist/funding-ledger/internal/payments"
)

// DepositIntent is the result of requesting a wallet deposit: the PENDING
// ledger row and the provider handle the user is redirected to. The balance
// stays untouched until the settlement webhook arrives.
type DepositIntent struct {
	Transaction *wallet.Transaction
	SessionID   string
	RedirectURL string
}

// WalletService defines custodial wallet operations
type WalletService interface {
	// GetOrCreateWallet returns the user's wallet, creating an empty one on
	// first access. Safe to call concurrently for the same user.
	GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)

	// RequestDeposit opens a hosted checkout session and records a PENDING
	// deposit transaction tagged with the session id.
	// Returns ErrDepositOutOfRange when the amount is outside the configured bounds.
	RequestDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*DepositIntent, error)

	// FundItemFromWallet moves wallet balance onto an item the user owns, in
	// a single database transaction. Returns the COMPLETED ledger row.
	FundItemFromWallet(ctx context.Context, userID, itemID uuid.UUID, amount int64) (*wallet.Transaction, error)

	// Withdraw debits the wallet balance for payout. Returns the COMPLETED
	// ledger row; ErrInsufficientBalance when the balance cannot cover it.
	Withdraw(ctx context.Context, userID uuid.UUID, amount int64) (*wallet.Transaction, error)

	// ListTransactions returns the wallet's ledger rows, newest first.
	ListTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*wallet.Transaction, error)
}

// OpenParams carries everything needed to open a contribution
type OpenParams struct {
	Target        contribution.Target
	Amount        int64
	ContributorID *uuid.UUID
	Email         string
	Message       string
	Anonymous     bool
	Provider      shared.PaymentProvider
}

// OpenResult is the opened PENDING contribution plus its payment handle:
// a redirect URL for hosted checkout, a client token for tokenized rails.
type OpenResult struct {
	Contribution *contribution.Contribution
	RedirectURL  string
	ClientToken  string
}

// ContributionService defines contribution lifecycle operations
type ContributionService interface {
	// Open validates the target, durably records a PENDING contribution and
	// obtains the payment handle for the chosen provider. The remaining-amount
	// check is advisory; racing contributions may together exceed the goal.
	Open(ctx context.Context, params OpenParams) (*OpenResult, error)

	// ChargeTokenized executes a synchronous charge for an open tokenized
	// contribution. A decline marks the row FAILED; approval is advisory and
	// the authoritative settlement still arrives by webhook.
	ChargeTokenized(ctx context.Context, contributionID uuid.UUID, paymentToken string) (*payments.ChargeResult, error)

	// ListByTarget returns PENDING and COMPLETED contributions for a target,
	// newest first.
	ListByTarget(ctx context.Context, target contribution.Target, page, perPage int) ([]*contribution.Contribution, error)
}

// GoalService computes and freezes item goal amounts. Pricing itself lives
// outside the ledger; callers pass the freshly set price and this service
// derives the goal from the owner's fee tier.
type GoalService interface {
	// PriceItemGoal quotes a goal for the item at the given price and stores
	// it. A zero price clears the goal, leaving the item unfundable.
	PriceItemGoal(ctx context.Context, itemID uuid.UUID, priceCents int64) (*fees.Quote, error)
}
