package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildEquityCurve_MergesEventsAndSnapshots(t *testing.T) {
	// Arrange
	initial := d("10000")
	events := []RealizedGain{
		gainAt("ENI.MI", "500", t0.Add(2*time.Hour)),
		gainAt("ISP.MI", "-100", t0.Add(5*time.Hour)),
	}
	snapshots := []Snapshot{
		{TakenAt: t0.Add(time.Hour), OpenCost: d("2000"), MarketValue: d("2100")},
		{TakenAt: t0.Add(4 * time.Hour), OpenCost: d("600"), MarketValue: d("700")},
	}

	// Act
	curve := BuildEquityCurve(initial, events, snapshots)

	// Assert: snapshot, event, snapshot, event — ordered and cumulative.
	assert.Len(t, curve, 4)
	assert.True(t, curve[0].Value.Equal(d("12100"))) // 10000 + 2100
	assert.True(t, curve[1].Value.Equal(d("12600"))) // + realized 500
	assert.True(t, curve[2].Value.Equal(d("11200"))) // open value now 700
	assert.True(t, curve[3].Value.Equal(d("11100"))) // + realized -100
	for i := 1; i < len(curve); i++ {
		assert.False(t, curve[i].Timestamp.Before(curve[i-1].Timestamp))
	}
}

func TestBuildEquityCurve_AppendOnly(t *testing.T) {
	// Appending a forward-dated event leaves every prior point unchanged.
	initial := d("1000")
	events := []RealizedGain{gainAt("ENI.MI", "50", t0.Add(time.Hour))}
	snapshots := []Snapshot{{TakenAt: t0, MarketValue: d("400")}}

	before := BuildEquityCurve(initial, events, snapshots)
	events = append(events, gainAt("ENI.MI", "25", t0.Add(3*time.Hour)))
	after := BuildEquityCurve(initial, events, snapshots)

	assert.Len(t, after, len(before)+1)
	assert.Equal(t, before, after[:len(before)])
	assert.True(t, after[len(after)-1].Value.Equal(d("1475")))
}

func TestBuildEquityCurve_Empty(t *testing.T) {
	assert.Empty(t, BuildEquityCurve(d("1000"), nil, nil))
}

func TestFilterCurve(t *testing.T) {
	curve := []EquityPoint{
		{Timestamp: t0, Value: d("1")},
		{Timestamp: t0.Add(time.Hour), Value: d("2")},
		{Timestamp: t0.Add(2 * time.Hour), Value: d("3")},
	}

	got := FilterCurve(curve, Period{Start: t0.Add(time.Hour)})

	assert.Len(t, got, 2)
	assert.True(t, got[0].Value.Equal(d("2")))
}
