package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExhausted is returned when the trade limit has been reached.
	ErrCapacityExhausted = errors.New("trade capacity exhausted")

	// ErrInsufficientBalance is returned when the simulated balance cannot cover the notional.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNothingToCancel is returned by CancelAll when the symbol had no open orders.
	ErrNothingToCancel = errors.New("nothing to cancel")

	// ErrDispatchQueueFull is returned when the execution workers cannot accept another trigger.
	ErrDispatchQueueFull = errors.New("dispatch queue full")

	// ErrLegNotFilled is returned when an immediate-or-cancel leg expired with nothing executed.
	ErrLegNotFilled = errors.New("leg not filled")

	// ErrOrderTooSmall is returned when an order is under the exchange's size minimums.
	ErrOrderTooSmall = errors.New("order below exchange minimum")

	// ErrUnknownSymbol is returned when a symbol is not known to the exchange metadata.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// IsRefusal reports whether err is a capacity refusal (no side effects happened).
func IsRefusal(err error) bool {
	return errors.Is(err, ErrCapacityExhausted) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrDispatchQueueFull)
}

// LegError reports a failed leg of a live execution together with the
// compensating cancellations that were attempted.
type LegError struct {
	Leg     int // 1-based
	Symbol  string
	Err     error
	Cancels []CancelResult
}

func (e *LegError) Error() string {
	return fmt.Sprintf("leg %d (%s): %v", e.Leg, e.Symbol, e.Err)
}

func (e *LegError) Unwrap() error {
	return e.Err
}

// ClassifyCancel turns a CancelAll error into a CancelResult.
func ClassifyCancel(symbol string, err error) CancelResult {
	switch {
	case err == nil:
		return CancelResult{Symbol: symbol, Kind: CancelOK}
	case errors.Is(err, ErrNothingToCancel):
		return CancelResult{Symbol: symbol, Kind: CancelNothing}
	default:
		return CancelResult{Symbol: symbol, Kind: CancelNetworkError, Err: err}
	}
}
