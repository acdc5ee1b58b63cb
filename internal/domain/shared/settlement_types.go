package shared

// PaymentProvider identifies the rail a contribution or deposit is paid through
type PaymentProvider string

const (
	ProviderHostedCheckout PaymentProvider = "HOSTED_CHECKOUT"
	ProviderTokenizedA     PaymentProvider = "TOKENIZED_A"
	ProviderTokenizedB     PaymentProvider = "TOKENIZED_B"
)

// Valid reports whether the provider is one of the supported rails
func (p PaymentProvider) Valid() bool {
	switch p {
	case ProviderHostedCheckout, ProviderTokenizedA, ProviderTokenizedB:
		return true
	}
	return false
}

// SettlementKind identifies what an external payment event settles
type SettlementKind string

const (
	SettlementWalletDeposit     SettlementKind = "wallet_deposit"
	SettlementItemContribution  SettlementKind = "item_contribution"
	SettlementEventContribution SettlementKind = "event_contribution"
	SettlementSubscription      SettlementKind = "subscription"
	SettlementPaymentFailed     SettlementKind = "payment_failed"
)

// OutboxStatus defines notification outbox publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
