// Package payments holds the outbound payment-provider surface: hosted
// checkout session creation, tokenized charges, and webhook signature
// verification. Settlement truth always arrives through webhooks; nothing in
// this package mutates the ledger.
package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

// CheckoutRequest describes the hosted checkout session to open
type CheckoutRequest struct {
	Kind          shared.SettlementKind `json:"kind"`
	AmountCents   int64                 `json:"amount_cents"`
	ReferenceID   uuid.UUID             `json:"reference_id"`  // Contribution or wallet-transaction id
	SubscriberID  uuid.UUID             `json:"subscriber_id"` // Wallet owner for deposits, user for subscriptions
	SuccessURL    string                `json:"success_url"`
	CancelURL     string                `json:"cancel_url"`
	CustomerEmail string                `json:"customer_email,omitempty"`
}

// CheckoutSession is the provider's handle for a hosted payment page
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// ChargeRequest describes a tokenized charge against a client-side payment token
type ChargeRequest struct {
	Provider     shared.PaymentProvider `json:"provider"`
	PaymentToken string                 `json:"payment_token"`
	AmountCents  int64                  `json:"amount_cents"`
	ReferenceID  uuid.UUID              `json:"reference_id"`
}

// ChargeResult is the synchronous outcome of a tokenized charge. The
// authoritative settlement still arrives by webhook; this only tells the
// caller whether to show a success or failure page.
type ChargeResult struct {
	ChargeID string `json:"charge_id"`
	Approved bool   `json:"approved"`
	Declined string `json:"decline_reason,omitempty"`
}

// CheckoutProvider opens hosted checkout sessions. The contributor is
// redirected to the provider; the ledger hears the outcome via webhook.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// TokenizedProvider serves the tokenized rails: short-lived client tokens for
// the browser SDK, and server-side charges against the resulting payment token.
type TokenizedProvider interface {
	ClientToken(ctx context.Context, provider shared.PaymentProvider) (string, error)
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
