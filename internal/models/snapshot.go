package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Snapshot is a persisted portfolio valuation sample feeding the equity
// curve. Snapshots are derived state: droppable and rebuildable, never
// authoritative.
type Snapshot struct {
	gorm.Model
	TakenAt     time.Time       `gorm:"index;not null" json:"taken_at"`
	OpenCost    decimal.Decimal `gorm:"type:numeric" json:"open_cost"`
	MarketValue decimal.Decimal `gorm:"type:numeric" json:"market_value"`
}
