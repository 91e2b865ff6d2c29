package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Operation is a persisted buy/sell record. The operations table is the
// journal's single source of truth and is append-only: corrections are new
// compensating operations, never updates or deletes.
type Operation struct {
	gorm.Model
	OpID      string          `gorm:"uniqueIndex;not null" json:"op_id"`
	Symbol    string          `gorm:"index;not null" json:"symbol"`
	Side      string          `gorm:"not null" json:"side"` // "BUY" or "SELL"
	Quantity  decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Fees      decimal.Decimal `gorm:"type:numeric" json:"fees"`
	Timestamp time.Time       `gorm:"index;not null" json:"timestamp"`
	Note      string          `json:"note,omitempty"`
}
