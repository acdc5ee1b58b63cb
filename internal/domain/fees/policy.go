// Package fees implements the platform fee schedule: the quote-time goal
// computation layered into an item's goal amount, and the settlement-time fee
// split extracted back out of it. Both are pure; all state lives with the
// caller. Amounts are int64 cents, rates are 4-decimal-place decimals.
package fees

import (
	"github.com/shopspring/decimal"
)

// ratePlaces is the precision fee rates are quoted at.
const ratePlaces = 4

// Policy holds the configurable fee schedule constants.
type Policy struct {
	// PlatformRate is the fee rate layered onto prices once the owner is past
	// the free tier, e.g. 0.03 for 3%.
	PlatformRate decimal.Decimal
	// FreeTierThreshold is the lifetime-received total (cents, net of fees)
	// up to which no fee is layered onto new goals.
	FreeTierThreshold int64
}

// Quote is the result of computing a goal amount for a priced item.
type Quote struct {
	// GoalAmount is nil when the item has no price and therefore no fundable goal.
	GoalAmount *int64
	FeeRate    decimal.Decimal
	FeeAmount  int64
}

// Split is the fee/net breakdown of a single contribution amount.
type Split struct {
	FeeRate   decimal.Decimal
	FeeAmount int64
	NetAmount int64
}

// QuoteGoal computes the goal amount for an item priced at priceCents, owned
// by a user who has received lifetimeReceivedCents net across all time.
// Owners at or below the free-tier threshold get a goal equal to the sticker
// price. Past the threshold the goal is inflated by the platform rate, with
// the fee rounded to whole cents half-up after multiplication.
//
// The returned quote is frozen into the item's goal at creation time; later
// changes to the policy constants never affect an existing goal.
func (p Policy) QuoteGoal(priceCents int64, lifetimeReceivedCents int64) Quote {
	if priceCents <= 0 {
		return Quote{FeeRate: decimal.Zero}
	}

	if lifetimeReceivedCents <= p.FreeTierThreshold {
		goal := priceCents
		return Quote{GoalAmount: &goal, FeeRate: decimal.Zero}
	}

	fee := decimal.NewFromInt(priceCents).Mul(p.PlatformRate).Round(0).IntPart()
	goal := priceCents + fee
	return Quote{GoalAmount: &goal, FeeRate: p.PlatformRate, FeeAmount: fee}
}

// SplitContribution computes the fee split for a contribution settling against
// an item with the given goal and price. The effective rate is derived from
// the ratio already embedded in the goal, (goal - price) / goal, not from the
// current policy constants, so the rate quoted to contributors never drifts.
//
// When the item has no goal or price, or the goal carries no fee (goal <=
// price), the entire contribution is net. The function is side-effect-free and
// safe to call repeatedly for display before settlement.
func SplitContribution(amountCents int64, goalCents, priceCents *int64) Split {
	if goalCents == nil || priceCents == nil || *goalCents <= *priceCents || *goalCents <= 0 {
		return Split{FeeRate: decimal.Zero, NetAmount: amountCents}
	}

	rate := decimal.NewFromInt(*goalCents - *priceCents).
		Div(decimal.NewFromInt(*goalCents)).
		Round(ratePlaces)

	fee := decimal.NewFromInt(amountCents).Mul(rate).Round(0).IntPart()
	return Split{
		FeeRate:   rate,
		FeeAmount: fee,
		NetAmount: amountCents - fee,
	}
}
