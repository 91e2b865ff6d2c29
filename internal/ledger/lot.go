package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a quantity of an instrument acquired by a single buy operation
// and not yet fully closed.
type Lot struct {
	OperationID string          `json:"operation_id"`
	Symbol      string          `json:"symbol"`
	Remaining   decimal.Decimal `json:"remaining"`
	Price       decimal.Decimal `json:"price"` // acquisition unit price
	AcquiredAt  time.Time       `json:"acquired_at"`
}

// Cost returns the cost basis of the remaining quantity.
func (l Lot) Cost() decimal.Decimal {
	return l.Remaining.Mul(l.Price)
}

// RealizedGain records the closing of all or part of a lot against a sell
// operation. Immutable once emitted; tax and equity-curve computation are
// derived from the append-only sequence of these events.
type RealizedGain struct {
	OperationID      string          `json:"operation_id"`     // the disposing sell
	LotOperationID   string          `json:"lot_operation_id"` // the buy that opened the lot
	Symbol           string          `json:"symbol"`
	Quantity         decimal.Decimal `json:"quantity"`
	AcquisitionPrice decimal.Decimal `json:"acquisition_price"`
	DisposalPrice    decimal.Decimal `json:"disposal_price"`
	Fees             decimal.Decimal `json:"fees"`
	Gain             decimal.Decimal `json:"gain"`
	AcquiredAt       time.Time       `json:"acquired_at"`
	ClosedAt         time.Time       `json:"closed_at"`
}

// CostBasis returns the acquisition cost of the closed quantity.
func (g RealizedGain) CostBasis() decimal.Decimal {
	return g.Quantity.Mul(g.AcquisitionPrice)
}

// Proceeds returns the disposal value of the closed quantity, before fees.
func (g RealizedGain) Proceeds() decimal.Decimal {
	return g.Quantity.Mul(g.DisposalPrice)
}
