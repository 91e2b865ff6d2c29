package ledger

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Operation is a single immutable buy or sell recorded in the journal.
// Corrections are modeled as new compensating operations appended to the
// history, never as edits.
type Operation struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"` // "BUY" or "SELL"
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // unit price
	Fees      decimal.Decimal `json:"fees"`
	Timestamp time.Time       `json:"timestamp"`
	Note      string          `json:"note,omitempty"`
}

// NewOperationID returns a fresh ULID. ULIDs sort lexicographically by
// creation time, which gives operations with equal timestamps a stable,
// deterministic processing order.
func NewOperationID() string {
	return ulid.Make().String()
}

// Before reports whether a sorts strictly before b in ledger order:
// by timestamp, ties broken by ID.
func (o Operation) Before(other Operation) bool {
	if o.Timestamp.Equal(other.Timestamp) {
		return o.ID < other.ID
	}
	return o.Timestamp.Before(other.Timestamp)
}
