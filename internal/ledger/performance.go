package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceReport holds realized-return percentages over the standard
// reporting windows. Each figure is net realized gain over disposed cost
// basis for events closed inside the window.
type PerformanceReport struct {
	Monthly      decimal.Decimal `json:"monthly"` // trailing 30 days
	YTD          decimal.Decimal `json:"ytd"`
	TwelveMonths decimal.Decimal `json:"twelve_months"`
	Inception    decimal.Decimal `json:"inception"`
}

// Performance computes the report relative to now.
func Performance(events []RealizedGain, now time.Time) PerformanceReport {
	return PerformanceReport{
		Monthly:      periodReturn(events, Since(now.AddDate(0, 0, -30))),
		YTD:          periodReturn(events, Since(time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()))),
		TwelveMonths: periodReturn(events, Since(now.AddDate(-1, 0, 0))),
		Inception:    periodReturn(events, Period{}),
	}
}

func periodReturn(events []RealizedGain, period Period) decimal.Decimal {
	gain := decimal.Zero
	cost := decimal.Zero
	for _, ev := range events {
		if !period.Contains(ev.ClosedAt) {
			continue
		}
		gain = gain.Add(ev.Gain)
		cost = cost.Add(ev.CostBasis())
	}
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return gain.Div(cost).Mul(decimal.NewFromInt(100)).Round(4)
}
