package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time valuation of the whole portfolio: the cost
// basis of everything still open and its market value. Snapshots are a
// reconstructable cache taken periodically by the valuation loop.
type Snapshot struct {
	TakenAt     time.Time       `json:"taken_at"`
	OpenCost    decimal.Decimal `json:"open_cost"`
	MarketValue decimal.Decimal `json:"market_value"`
}

// EquityPoint is one sample of the account-value series.
type EquityPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// BuildEquityCurve merges realized-gain events and valuation snapshots into
// a time-ordered account-value series. The value at time t is
//
//	initial balance + cumulative realized P/L up to t + market value of the
//	open portfolio from the latest snapshot at or before t
//
// where the snapshot's market value already carries both the open invested
// capital and its unrealized P/L. Realized events step the curve; snapshots
// refresh the unrealized part. Appending forward-dated inputs only extends
// the series; earlier points are never rewritten.
func BuildEquityCurve(initial decimal.Decimal, events []RealizedGain, snapshots []Snapshot) []EquityPoint {
	evs := make([]RealizedGain, len(events))
	copy(evs, events)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].ClosedAt.Before(evs[j].ClosedAt) })

	snaps := make([]Snapshot, len(snapshots))
	copy(snaps, snapshots)
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].TakenAt.Before(snaps[j].TakenAt) })

	var (
		points   []EquityPoint
		realized = decimal.Zero
		open     = decimal.Zero
		ei, si   = 0, 0
	)

	emit := func(t time.Time) {
		value := initial.Add(realized).Add(open)
		// Same-instant inputs collapse into one point.
		if n := len(points); n > 0 && points[n-1].Timestamp.Equal(t) {
			points[n-1].Value = value
			return
		}
		points = append(points, EquityPoint{Timestamp: t, Value: value})
	}

	for ei < len(evs) || si < len(snaps) {
		if si >= len(snaps) || (ei < len(evs) && !evs[ei].ClosedAt.After(snaps[si].TakenAt)) {
			realized = realized.Add(evs[ei].Gain)
			emit(evs[ei].ClosedAt)
			ei++
		} else {
			open = snaps[si].MarketValue
			emit(snaps[si].TakenAt)
			si++
		}
	}
	return points
}

// FilterCurve restricts a curve to the points inside the period.
func FilterCurve(points []EquityPoint, period Period) []EquityPoint {
	var out []EquityPoint
	for _, p := range points {
		if period.Contains(p.Timestamp) {
			out = append(out, p)
		}
	}
	return out
}
