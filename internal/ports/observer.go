package ports

import (
	"github.com/alejandrodnm/triarb/internal/domain"
)

// SkipReason names why a triangle evaluation did not trigger.
type SkipReason string

const (
	SkipCooldown  SkipReason = "cooldown"
	SkipMissing   SkipReason = "missing_quote"
	SkipLiquidity SkipReason = "liquidity"
	SkipEdge      SkipReason = "edge"
	SkipCapacity  SkipReason = "capacity"
)

// Observer receives engine events for metrics. Implementations must be cheap
// and safe for concurrent use; they are called from the hot path.
type Observer interface {
	Evaluated(tri domain.Triangle, ev domain.Evaluation)
	Skipped(tri domain.Triangle, reason SkipReason)
	Triggered(trig domain.Trigger)
	Committed(outcome domain.TradeOutcome)
	Aborted(trig domain.Trigger, err error)
	Cancelled(res domain.CancelResult)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) Evaluated(domain.Triangle, domain.Evaluation) {}
func (NopObserver) Skipped(domain.Triangle, SkipReason)          {}
func (NopObserver) Triggered(domain.Trigger)                     {}
func (NopObserver) Committed(domain.TradeOutcome)                {}
func (NopObserver) Aborted(domain.Trigger, error)                {}
func (NopObserver) Cancelled(domain.CancelResult)                {}
