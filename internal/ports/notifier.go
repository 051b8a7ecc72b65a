package ports

import (
	"context"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// Notifier presents committed trades to the operator.
type Notifier interface {
	// NotifyTrade is called once per committed outcome with the state after it.
	NotifyTrade(ctx context.Context, outcome domain.TradeOutcome, state domain.EngineState) error
}
