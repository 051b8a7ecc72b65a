package paper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// Executor simulates a triangle trade with pure accounting: the profit is
// notional × edge and nothing touches the network.
//
// Capacity and balance are checked by the engine's RiskLimiter when the
// trigger is reserved, before Execute is ever called.
type Executor struct {
	now   func() time.Time
	newID func() string
}

// New creates a paper executor.
func New() *Executor {
	return &Executor{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Mode implements ports.Executor.
func (e *Executor) Mode() domain.Mode {
	return domain.ModePaper
}

// Execute books the simulated trade.
func (e *Executor) Execute(ctx context.Context, trig domain.Trigger) (domain.TradeOutcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.TradeOutcome{}, fmt.Errorf("paper.Execute: %w", err)
	}
	if trig.Notional <= 0 {
		return domain.TradeOutcome{}, fmt.Errorf("paper.Execute: non-positive notional %.4f", trig.Notional)
	}

	return domain.TradeOutcome{
		ID:           e.newID(),
		TriggerID:    trig.ID,
		TriangleKey:  trig.Triangle.Key(),
		Pair:         trig.Triangle.Pair(),
		Direction:    trig.Direction,
		Edge:         trig.Edge,
		NotionalSize: trig.Notional,
		RealizedPnL:  SimulatedProfit(trig.Notional, trig.Edge),
		Mode:         domain.ModePaper,
		Timestamp:    e.now(),
	}, nil
}

// SimulatedProfit is the paper PnL of a trade.
func SimulatedProfit(notional, edge float64) float64 {
	return notional * edge
}
