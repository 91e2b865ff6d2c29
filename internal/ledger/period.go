package ledger

import "time"

// Period is a half-open time window [Start, End). A zero Start or End
// leaves that side unbounded.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Year returns the calendar-year period for y in UTC, the usual scope of a
// capital-gains tax computation.
func Year(y int) Period {
	return Period{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Since returns the open-ended period starting at t.
func Since(t time.Time) Period {
	return Period{Start: t}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && !t.Before(p.End) {
		return false
	}
	return true
}

// IsZero reports whether the period is fully unbounded.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}
