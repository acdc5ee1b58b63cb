package service

import (
	"context"

	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

// SettlementService dispatches confirmed-payment events to the branch that
// settles them.
type SettlementService interface {
	ProcessEvent(ctx context.Context, event *shared.SettlementEvent) error
}

// DepositSettler credits wallet balances for confirmed deposit sessions
type DepositSettler interface {
	Settle(ctx context.Context, event *shared.SettlementEvent) error
}

// ContributionSettler completes or fails contributions and applies their
// funding and fee effects
type ContributionSettler interface {
	Settle(ctx context.Context, event *shared.SettlementEvent) error
	Fail(ctx context.Context, event *shared.SettlementEvent) error
}

// SubscriptionSettler activates subscriptions for confirmed payments
type SubscriptionSettler interface {
	Settle(ctx context.Context, event *shared.SettlementEvent) error
}
