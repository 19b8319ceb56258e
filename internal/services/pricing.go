package services

import (
	"fmt"
	"math"

	"omnioracle/internal/models"

	"github.com/shopspring/decimal"
)

// Pricing constants. The impact formula is a linear, liquidity-scaled
// heuristic, not a constant-product curve; changing it changes every
// quoted price, so treat these as part of the wire contract.
const (
	priceImpactFactor = 0.2
	minProbability    = 0.01
	maxProbability    = 0.99

	// probSumTolerance bounds floating error on the YES+NO sum.
	probSumTolerance = 1e-9
)

// TradeQuote is the outcome of pricing a buy against a market: execution
// price, shares acquired, and the post-trade probability pair.
type TradeQuote struct {
	Price             decimal.Decimal
	Shares            decimal.Decimal
	NewYesProbability float64
	NewNoProbability  float64
}

// QuoteTrade prices a buy of `amount` notional on one side of the market.
// Deterministic and side-effect free; callers are responsible for checking
// market status and user balance before applying.
func QuoteTrade(market *models.Market, outcome models.Outcome, amount decimal.Decimal) (*TradeQuote, error) {
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrValidation, outcome)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	liquidity := market.Liquidity.InexactFloat64()
	if liquidity <= 0 {
		return nil, fmt.Errorf("%w: market has no seed liquidity", ErrInvariant)
	}

	price := market.Price(outcome)
	shares := amount.Div(decimal.NewFromFloat(price))

	impact := amount.InexactFloat64() / liquidity * priceImpactFactor

	newYes := market.YesProbability
	if outcome == models.OutcomeYes {
		newYes = math.Min(maxProbability, newYes+impact)
	} else {
		newYes = math.Max(minProbability, newYes-impact)
	}

	return &TradeQuote{
		Price:             decimal.NewFromFloat(price),
		Shares:            shares,
		NewYesProbability: newYes,
		NewNoProbability:  1 - newYes,
	}, nil
}

// ApplyQuote commits a quoted trade onto the market record: probability
// shift, pool balance on the bought side, and volume. The caller persists
// the market and the trade row in one transaction.
func ApplyQuote(market *models.Market, outcome models.Outcome, amount decimal.Decimal, quote *TradeQuote) error {
	market.YesProbability = quote.NewYesProbability
	market.NoProbability = quote.NewNoProbability
	if outcome == models.OutcomeYes {
		market.YesPool = market.YesPool.Add(amount)
	} else {
		market.NoPool = market.NoPool.Add(amount)
	}
	market.Volume = market.Volume.Add(amount)
	return CheckProbabilityInvariant(market)
}

// CheckProbabilityInvariant asserts the pricing guarantees: each side in
// [0.01, 0.99] and the pair summing to 1. A failure here means a bug in
// the engine, not bad input.
func CheckProbabilityInvariant(market *models.Market) error {
	yes, no := market.YesProbability, market.NoProbability
	if yes < minProbability-probSumTolerance || yes > maxProbability+probSumTolerance {
		return fmt.Errorf("%w: yes probability %f out of range", ErrInvariant, yes)
	}
	if math.Abs(yes+no-1) > probSumTolerance {
		return fmt.Errorf("%w: probabilities sum to %f", ErrInvariant, yes+no)
	}
	return nil
}
