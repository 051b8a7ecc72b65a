package live

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/alejandrodnm/triarb/internal/ports"
)

const (
	defaultLegTimeout = 3 * time.Second
	cancelTimeout     = 5 * time.Second
)

// Config holds live execution settings.
type Config struct {
	Fee        float64
	LegTimeout time.Duration
}

// Executor runs a triangle as a three-leg saga of immediate-or-cancel orders.
//
// If any leg fails, open orders on all three symbols are cancelled best
// effort. Legs that already filled are NOT unwound: the account is left
// holding whatever the filled legs bought. Nothing is retried.
type Executor struct {
	orders ports.OrderPlacer
	cfg    Config
	obs    ports.Observer
	now    func() time.Time
	newID  func() string
}

// New creates a real-money executor.
func New(orders ports.OrderPlacer, cfg Config, obs ports.Observer) *Executor {
	if cfg.LegTimeout <= 0 {
		cfg.LegTimeout = defaultLegTimeout
	}
	if obs == nil {
		obs = ports.NopObserver{}
	}
	return &Executor{
		orders: orders,
		cfg:    cfg,
		obs:    obs,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Mode implements ports.Executor.
func (e *Executor) Mode() domain.Mode {
	return domain.ModeLive
}

// Execute places the three legs in order. Each leg is capped at what the
// previous one actually delivered. realizedPnL on success is the pre-trade
// estimate notional × edge; fills are not reconciled.
func (e *Executor) Execute(ctx context.Context, trig domain.Trigger) (domain.TradeOutcome, error) {
	legs := PlanLegs(trig, e.cfg.Fee)

	for i := range legs {
		req := legs[i]
		req.ClientID = e.newID()

		res, err := e.placeLeg(ctx, req)
		if err != nil {
			cancels := e.compensate(ctx, trig.Triangle)
			if i > 0 {
				slog.Error("live: residual exposure after partial triangle",
					"triangle", trig.Triangle.Key(),
					"direction", trig.Direction,
					"filled_legs", i,
					"failed_symbol", req.Symbol,
				)
			}
			return domain.TradeOutcome{}, &domain.LegError{
				Leg:     i + 1,
				Symbol:  req.Symbol,
				Err:     err,
				Cancels: cancels,
			}
		}

		if i+1 < len(legs) {
			legs[i+1] = capToFill(legs[i+1], req, res, e.cfg.Fee)
		}

		slog.Debug("live: leg filled",
			"triangle", trig.Triangle.Key(),
			"leg", i+1,
			"symbol", req.Symbol,
			"side", req.Side,
			"qty", req.Quantity,
			"price", req.LimitPrice,
			"executed", res.ExecutedQty,
			"status", res.Status,
		)
	}

	return domain.TradeOutcome{
		ID:           e.newID(),
		TriggerID:    trig.ID,
		TriangleKey:  trig.Triangle.Key(),
		Pair:         trig.Triangle.Pair(),
		Direction:    trig.Direction,
		Edge:         trig.Edge,
		NotionalSize: trig.Notional,
		RealizedPnL:  trig.Notional * trig.Edge,
		Mode:         domain.ModeLive,
		Timestamp:    e.now(),
	}, nil
}

// placeLeg places one order under the per-leg timeout. An IOC order that
// expired with nothing executed counts as a failed leg.
func (e *Executor) placeLeg(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	lctx, cancel := context.WithTimeout(ctx, e.cfg.LegTimeout)
	defer cancel()

	res, err := e.orders.Place(lctx, req)
	if err != nil {
		return res, fmt.Errorf("live.placeLeg: %s %s: %w", req.Side, req.Symbol, err)
	}
	if res.ExecutedQty <= 0 {
		return res, fmt.Errorf("live.placeLeg: %s %s status %s: %w",
			req.Side, req.Symbol, res.Status, domain.ErrLegNotFilled)
	}
	return res, nil
}

// compensate cancels open orders on every symbol of the triangle. Failures
// are classified and reported, never returned or retried.
func (e *Executor) compensate(ctx context.Context, tri domain.Triangle) []domain.CancelResult {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer cancel()

	symbols := tri.Symbols()
	results := make([]domain.CancelResult, 0, len(symbols))
	for _, sym := range symbols {
		r := domain.ClassifyCancel(sym, e.orders.CancelAll(cctx, sym))
		e.obs.Cancelled(r)
		switch r.Kind {
		case domain.CancelNetworkError:
			slog.Warn("live: cancel failed", "symbol", sym, "err", r.Err)
		default:
			slog.Debug("live: cancel", "symbol", sym, "result", r.Kind)
		}
		results = append(results, r)
	}
	return results
}
