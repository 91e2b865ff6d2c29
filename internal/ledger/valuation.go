package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a market price observation for one instrument. Stale marks a
// price recovered from a cache after the live source failed; callers must
// surface the flag instead of treating the value as current.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"as_of"`
	Stale  bool            `json:"stale"`
}

// PositionValuation is the derived view of one instrument's open lots
// against a market price. It is never stored; it is recomputed whenever a
// fresh price or a fresh operation arrives.
type PositionValuation struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avg_price"` // weighted-average acquisition price
	CostBasis    decimal.Decimal `json:"cost_basis"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	UnrealizedPL decimal.Decimal `json:"unrealized_pl"`
	ReturnPct    decimal.Decimal `json:"return_pct"`
	PriceAsOf    time.Time       `json:"price_as_of"`
	PriceStale   bool            `json:"price_stale"`
}

// ValuePosition values a set of open lots against a quote. It is a pure
// function of its inputs. The second return value is false when there is
// nothing to value (no open quantity), which callers must treat as an
// absent position rather than a zero one.
func ValuePosition(symbol string, lots []Lot, quote Quote) (PositionValuation, bool) {
	quantity := decimal.Zero
	cost := decimal.Zero
	for _, l := range lots {
		quantity = quantity.Add(l.Remaining)
		cost = cost.Add(l.Cost())
	}
	if !quantity.IsPositive() {
		return PositionValuation{}, false
	}

	avg := cost.Div(quantity)
	market := quantity.Mul(quote.Price)
	unrealized := market.Sub(cost)

	returnPct := decimal.Zero
	if cost.IsPositive() {
		returnPct = unrealized.Div(cost).Mul(decimal.NewFromInt(100)).Round(4)
	}

	return PositionValuation{
		Symbol:       symbol,
		Quantity:     quantity,
		AvgPrice:     avg.Round(8),
		CostBasis:    cost,
		CurrentPrice: quote.Price,
		MarketValue:  market,
		UnrealizedPL: unrealized,
		ReturnPct:    returnPct,
		PriceAsOf:    quote.AsOf,
		PriceStale:   quote.Stale,
	}, true
}
