package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func gainAt(symbol, gain string, at time.Time) RealizedGain {
	return RealizedGain{Symbol: symbol, Gain: d(gain), ClosedAt: at}
}

func TestTaxCalculator_NetGainBasis(t *testing.T) {
	// +1000 and -300 in the same year net to 700; 26% of 700 is 182.00.
	calc := NewTaxCalculator(DefaultTaxRate)
	events := []RealizedGain{
		gainAt("ENI.MI", "1000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)),
		gainAt("ISP.MI", "-300", time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)),
	}

	liability := calc.Liability(events, Year(2025))

	assert.True(t, liability.Equal(d("182.00")), "got %s", liability)
}

func TestTaxCalculator_FlooredAtZero(t *testing.T) {
	calc := NewTaxCalculator(DefaultTaxRate)

	t.Run("NetLoss", func(t *testing.T) {
		events := []RealizedGain{
			gainAt("ENI.MI", "200", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)),
			gainAt("ISP.MI", "-500", time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)),
		}
		assert.True(t, calc.Liability(events, Year(2025)).IsZero())
	})

	t.Run("NoEvents", func(t *testing.T) {
		assert.True(t, calc.Liability(nil, Year(2025)).IsZero())
	})
}

func TestTaxCalculator_PeriodFilter(t *testing.T) {
	// Losses in a different year do not offset this year's gains.
	calc := NewTaxCalculator(DefaultTaxRate)
	events := []RealizedGain{
		gainAt("ENI.MI", "-900", time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)),
		gainAt("ENI.MI", "1000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)),
	}

	assert.True(t, calc.Liability(events, Year(2025)).Equal(d("260.00")))
	assert.True(t, calc.Liability(events, Year(2024)).IsZero())
	assert.True(t, calc.NetGain(events, Period{}).Equal(d("100")))
}

func TestTaxCalculator_Wallet(t *testing.T) {
	calc := NewTaxCalculator(DefaultTaxRate)
	events := []RealizedGain{
		gainAt("ENI.MI", "1000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)),
		gainAt("ISP.MI", "-300", time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)),
		gainAt("UCG.MI", "50", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)),
	}

	wallet := calc.Wallet(events, Year(2025))

	assert.True(t, wallet.RealizedPL.Equal(d("750")))
	assert.True(t, wallet.TotalGains.Equal(d("1050")))
	assert.True(t, wallet.TotalLosses.Equal(d("300")))
	assert.True(t, wallet.NetBalance.Equal(d("750")))
	assert.True(t, wallet.TaxDue.Equal(d("195.00")))
}

func TestPerformance_Windows(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	events := []RealizedGain{
		// Inside the trailing month: +10% on 1000 cost.
		{Symbol: "ENI.MI", Gain: d("100"), Quantity: d("10"), AcquisitionPrice: d("100"),
			ClosedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		// Earlier this year: -5% on 2000 cost.
		{Symbol: "ISP.MI", Gain: d("-100"), Quantity: d("1000"), AcquisitionPrice: d("2"),
			ClosedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		// Previous year, inception only.
		{Symbol: "UCG.MI", Gain: d("500"), Quantity: d("100"), AcquisitionPrice: d("10"),
			ClosedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	report := Performance(events, now)

	assert.True(t, report.Monthly.Equal(d("10")), "monthly %s", report.Monthly)
	assert.True(t, report.YTD.Equal(d("0")), "ytd %s", report.YTD) // net 0 over 3000
	assert.True(t, report.TwelveMonths.Equal(d("0")), "ltm %s", report.TwelveMonths)
	assert.True(t, report.Inception.Equal(d("12.5")), "inception %s", report.Inception) // 500 over 4000
}
