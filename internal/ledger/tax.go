package ledger

import "github.com/shopspring/decimal"

// DefaultTaxRate is the flat Italian capital-gains rate.
var DefaultTaxRate = decimal.NewFromFloat(0.26)

// TaxCalculator computes flat-rate capital-gains liability over realized
// gains. Losses offset gains within the same period (net-gain basis) and
// liability never goes below zero; loss carry-forward across periods is
// not supported.
type TaxCalculator struct {
	rate decimal.Decimal
}

// NewTaxCalculator returns a calculator for the given flat rate,
// e.g. 0.26 for 26%.
func NewTaxCalculator(rate decimal.Decimal) TaxCalculator {
	return TaxCalculator{rate: rate}
}

// Rate returns the calculator's flat rate.
func (c TaxCalculator) Rate() decimal.Decimal { return c.rate }

// NetGain sums gains and losses of the events whose disposal falls inside
// the period.
func (c TaxCalculator) NetGain(events []RealizedGain, period Period) decimal.Decimal {
	net := decimal.Zero
	for _, ev := range events {
		if period.Contains(ev.ClosedAt) {
			net = net.Add(ev.Gain)
		}
	}
	return net
}

// Liability returns rate × net gain for the period when the net is
// positive, zero otherwise. Calling it mid-period yields the running
// "tax due so far" view; over a closed period it is the finalized amount.
func (c TaxCalculator) Liability(events []RealizedGain, period Period) decimal.Decimal {
	net := c.NetGain(events, period)
	if !net.IsPositive() {
		return decimal.Zero
	}
	return net.Mul(c.rate).Round(2)
}

// TaxWallet is the "zainetto fiscale" view over a period: realized totals
// split into gains and losses, the net fiscal balance, and the tax due.
type TaxWallet struct {
	RealizedPL  decimal.Decimal `json:"realized_pl"`
	TotalGains  decimal.Decimal `json:"total_gains"`
	TotalLosses decimal.Decimal `json:"total_losses"` // absolute value
	NetBalance  decimal.Decimal `json:"net_balance"`
	TaxDue      decimal.Decimal `json:"tax_due"`
}

// Wallet summarizes the period's realized events.
func (c TaxCalculator) Wallet(events []RealizedGain, period Period) TaxWallet {
	w := TaxWallet{
		RealizedPL:  decimal.Zero,
		TotalGains:  decimal.Zero,
		TotalLosses: decimal.Zero,
	}
	for _, ev := range events {
		if !period.Contains(ev.ClosedAt) {
			continue
		}
		w.RealizedPL = w.RealizedPL.Add(ev.Gain)
		if ev.Gain.IsPositive() {
			w.TotalGains = w.TotalGains.Add(ev.Gain)
		} else {
			w.TotalLosses = w.TotalLosses.Add(ev.Gain.Abs())
		}
	}
	w.NetBalance = w.TotalGains.Sub(w.TotalLosses)
	w.TaxDue = c.Liability(events, period)
	return w
}
