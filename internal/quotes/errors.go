package quotes

import "fmt"

// PriceUnavailableError means no price could be obtained for an instrument:
// the live source failed and no cached value exists. Valuation treats it as
// non-fatal and degrades to a cost-basis fallback.
type PriceUnavailableError struct {
	Symbol string
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("price unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *PriceUnavailableError) Unwrap() error { return e.Err }
