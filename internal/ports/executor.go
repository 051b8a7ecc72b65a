package ports

import (
	"context"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// Executor carries out an eligible trigger. Paper and live engines both
// implement it so the detection and gating pipeline is shared.
type Executor interface {
	// Execute runs the trigger to completion. A nil error means the trade is
	// committed; any error means it was refused or aborted.
	Execute(ctx context.Context, trig domain.Trigger) (domain.TradeOutcome, error)

	// Mode reports which strategy this executor implements.
	Mode() domain.Mode
}

// OrderPlacer is the brokerage primitive the live engine needs.
type OrderPlacer interface {
	// Place submits one conditional limit order.
	Place(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)

	// CancelAll cancels every open order on symbol. Returns
	// domain.ErrNothingToCancel when there was nothing open.
	CancelAll(ctx context.Context, symbol string) error
}
