package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OversellError rejects a sell that exceeds the open quantity for an
// instrument. The operation has no effect on the book; it signals an
// inconsistent journal (a missing buy or a data-entry mistake).
type OversellError struct {
	Symbol    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("oversell on %s: requested %s, only %s open",
		e.Symbol, e.Requested.String(), e.Available.String())
}

// ReplayInconsistencyError means a full replay of the operation history
// produced a state that violates the non-negative quantity invariant.
// Derived state for the instrument must not be trusted until the journal
// data is inspected and corrected.
type ReplayInconsistencyError struct {
	Symbol      string
	OperationID string
	Err         error
}

func (e *ReplayInconsistencyError) Error() string {
	return fmt.Sprintf("replay inconsistency on %s at operation %s: %v", e.Symbol, e.OperationID, e.Err)
}

func (e *ReplayInconsistencyError) Unwrap() error { return e.Err }

// ErrUnknownSide rejects an operation whose side is neither BUY nor SELL.
type ErrUnknownSide struct {
	Side string
}

func (e *ErrUnknownSide) Error() string {
	return fmt.Sprintf("unknown operation side %q", e.Side)
}
