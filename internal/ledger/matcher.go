package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Book is the lot matcher's working set: one FIFO queue of open lots per
// instrument. It is not safe for concurrent use; the journal is
// single-writer and ordering discipline replaces locking.
type Book struct {
	lots map[string][]Lot
}

// NewBook returns an empty lot book.
func NewBook() *Book {
	return &Book{lots: make(map[string][]Lot)}
}

// OpenQuantity returns the total remaining quantity across all open lots
// for a symbol.
func (b *Book) OpenQuantity(symbol string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.lots[symbol] {
		total = total.Add(l.Remaining)
	}
	return total
}

// OpenCost returns the total cost basis of all open lots for a symbol.
func (b *Book) OpenCost(symbol string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.lots[symbol] {
		total = total.Add(l.Cost())
	}
	return total
}

// Lots returns a copy of the open lots for a symbol in FIFO order.
func (b *Book) Lots(symbol string) []Lot {
	src := b.lots[symbol]
	if len(src) == 0 {
		return nil
	}
	out := make([]Lot, len(src))
	copy(out, src)
	return out
}

// Symbols returns the instruments that currently have open lots, sorted.
func (b *Book) Symbols() []string {
	var out []string
	for symbol, lots := range b.lots {
		if len(lots) > 0 {
			out = append(out, symbol)
		}
	}
	sort.Strings(out)
	return out
}

// Apply processes a single operation against the book. A buy opens a new
// lot and returns no events. A sell consumes open lots oldest-first (FIFO)
// and returns one RealizedGain per lot consumed, with the sell's fees
// allocated proportionally to the consumed quantities.
//
// Apply is all-or-nothing: a sell that exceeds the open quantity returns an
// OversellError and leaves the book untouched.
func (b *Book) Apply(op Operation) ([]RealizedGain, error) {
	switch op.Side {
	case SideBuy:
		b.lots[op.Symbol] = append(b.lots[op.Symbol], Lot{
			OperationID: op.ID,
			Symbol:      op.Symbol,
			Remaining:   op.Quantity,
			Price:       op.Price,
			AcquiredAt:  op.Timestamp,
		})
		return nil, nil
	case SideSell:
		return b.sell(op)
	default:
		return nil, &ErrUnknownSide{Side: op.Side}
	}
}

func (b *Book) sell(op Operation) ([]RealizedGain, error) {
	available := b.OpenQuantity(op.Symbol)
	if available.LessThan(op.Quantity) {
		return nil, &OversellError{Symbol: op.Symbol, Requested: op.Quantity, Available: available}
	}

	var (
		events    []RealizedGain
		remaining = op.Quantity
		queue     = b.lots[op.Symbol]
		allocated = decimal.Zero // fees handed out so far
	)

	for len(queue) > 0 && remaining.IsPositive() {
		lot := queue[0]

		closed := lot.Remaining
		if closed.GreaterThan(remaining) {
			closed = remaining
		}

		// Proportional fee share; the last slice absorbs the rounding
		// remainder so the shares always sum to the operation's fees.
		feeShare := op.Fees.Mul(closed).Div(op.Quantity).Round(8)
		if closed.Equal(remaining) {
			feeShare = op.Fees.Sub(allocated)
		}
		allocated = allocated.Add(feeShare)

		gain := op.Price.Sub(lot.Price).Mul(closed).Sub(feeShare)
		events = append(events, RealizedGain{
			OperationID:      op.ID,
			LotOperationID:   lot.OperationID,
			Symbol:           op.Symbol,
			Quantity:         closed,
			AcquisitionPrice: lot.Price,
			DisposalPrice:    op.Price,
			Fees:             feeShare,
			Gain:             gain,
			AcquiredAt:       lot.AcquiredAt,
			ClosedAt:         op.Timestamp,
		})

		remaining = remaining.Sub(closed)
		lot.Remaining = lot.Remaining.Sub(closed)
		if lot.Remaining.IsZero() {
			queue = queue[1:]
		} else {
			queue[0] = lot
		}
	}

	if len(queue) == 0 {
		delete(b.lots, op.Symbol)
	} else {
		b.lots[op.Symbol] = queue
	}
	return events, nil
}

// Replay rebuilds a book and its realized-gain events from scratch given the
// complete operation history. The history is sorted by timestamp with ties
// broken by operation ID before applying, so a replay of the same operations
// always produces identical lots and events.
//
// Any apply failure during replay is a ReplayInconsistencyError: the stored
// history itself is inconsistent and derived state must not be served.
func Replay(ops []Operation) (*Book, []RealizedGain, error) {
	ordered := make([]Operation, len(ops))
	copy(ordered, ops)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	book := NewBook()
	var events []RealizedGain
	for _, op := range ordered {
		emitted, err := book.Apply(op)
		if err != nil {
			return nil, nil, &ReplayInconsistencyError{Symbol: op.Symbol, OperationID: op.ID, Err: err}
		}
		events = append(events, emitted...)
	}
	return book, events, nil
}
