package contribution

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount   = errors.New("contribution amount must be positive")
	ErrInvalidProvider = errors.New("unsupported payment provider")
	ErrEmptyTarget     = errors.New("contribution target is required")
)

// Status defines contribution lifecycle states
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Terminal reports whether no further automated transition is allowed out of
// the status. REFUNDED is reachable from COMPLETED by administrative action
// only.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRefunded
}

// TargetKind discriminates what a contribution funds
type TargetKind string

const (
	TargetItem  TargetKind = "ITEM"
	TargetEvent TargetKind = "EVENT"
)

// Target identifies the single item or event a contribution funds. A
// contribution targets exactly one of the two; constructing the target
// through ItemTarget/EventTarget keeps both-set unrepresentable.
type Target struct {
	Kind TargetKind
	ID   uuid.UUID
}

func ItemTarget(id uuid.UUID) Target  { return Target{Kind: TargetItem, ID: id} }
func EventTarget(id uuid.UUID) Target { return Target{Kind: TargetEvent, ID: id} }

// Contribution represents a single pledge toward an item or event. Fee fields
// stay zero until settlement; ExternalPaymentID is set at settlement and is
// the idempotency key against provider redelivery.
type Contribution struct {
	ID               uuid.UUID              `json:"id"`
	Target           Target                 `json:"target"`
	ContributorID    *uuid.UUID             `json:"contributor_id,omitempty"`
	ContributorEmail string                 `json:"contributor_email,omitempty"`
	Amount           int64                  `json:"amount"` // Stored in cents/minor units
	Message          string                 `json:"message,omitempty"`
	IsAnonymous      bool                   `json:"is_anonymous"`
	Provider         shared.PaymentProvider `json:"payment_provider"`
	Status           Status                 `json:"status"`
	PlatformFeeRate  decimal.Decimal        `json:"platform_fee_rate"`
	PlatformFee      int64                  `json:"platform_fee_amount"`
	ExternalPayment  string                 `json:"external_payment_id,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	SettledAt        *time.Time             `json:"settled_at,omitempty"`
}

// New creates a PENDING contribution toward the given target. The anonymous
// flag only suppresses display of identity, never the monetary record: an
// anonymous contribution still produces a row, just without a contributor.
func New(target Target, amount int64, contributorID *uuid.UUID, email string, message string, anonymous bool, provider shared.PaymentProvider) (*Contribution, error) {
	if target.ID == uuid.Nil {
		return nil, ErrEmptyTarget
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !provider.Valid() {
		return nil, ErrInvalidProvider
	}

	return &Contribution{
		ID:               uuid.New(),
		Target:           target,
		ContributorID:    contributorID,
		ContributorEmail: email,
		Amount:           amount,
		Message:          message,
		IsAnonymous:      anonymous,
		Provider:         provider,
		Status:           StatusPending,
		PlatformFeeRate:  decimal.Zero,
		CreatedAt:        time.Now(),
	}, nil
}

// Complete transitions the contribution to COMPLETED with its fee split.
// Only valid from PENDING; terminal states reject the transition.
func (c *Contribution) Complete(externalPaymentID string, feeRate decimal.Decimal, feeAmount int64) error {
	if c.Status != StatusPending {
		return ErrTerminalState{ContributionID: c.ID, Status: c.Status}
	}

	now := time.Now()
	c.Status = StatusCompleted
	c.ExternalPayment = externalPaymentID
	c.PlatformFeeRate = feeRate
	c.PlatformFee = feeAmount
	c.SettledAt = &now
	return nil
}

// Fail transitions the contribution to FAILED (provider declined or the
// contributor abandoned checkout). Only valid from PENDING.
func (c *Contribution) Fail() error {
	if c.Status != StatusPending {
		return ErrTerminalState{ContributionID: c.ID, Status: c.Status}
	}
	c.Status = StatusFailed
	return nil
}

// Refund marks a COMPLETED contribution REFUNDED. Administrative only.
func (c *Contribution) Refund() error {
	if c.Status != StatusCompleted {
		return ErrTerminalState{ContributionID: c.ID, Status: c.Status}
	}
	c.Status = StatusRefunded
	return nil
}

// Visible reports whether the contribution counts toward funding totals and
// contributor lists. FAILED and REFUNDED rows are excluded everywhere.
func (c *Contribution) Visible() bool {
	return c.Status == StatusPending || c.Status == StatusCompleted
}
