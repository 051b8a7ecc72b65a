package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/alejandrodnm/triarb/internal/ports"
)

// Decision is an eligible trigger together with the risk slot taken for it.
type Decision struct {
	Trigger     domain.Trigger
	Reservation *Reservation
}

// Detector re-evaluates the triangles touched by every quote update and
// decides which of them trigger.
//
// OnQuote runs as one critical section: the cache write, the cooldown check,
// the evaluation, the risk reservation and the cooldown mark all happen under
// the same lock. Execution happens after it returns.
type Detector struct {
	mu sync.Mutex

	params    domain.Params
	tradeSize float64

	cache *PriceCache
	gate  *CooldownGate
	risk  *RiskLimiter
	obs   ports.Observer

	triangles []domain.Triangle
	index     map[string][]int // symbol → triangles referencing it
	newID     func() string
}

// NewDetector indexes triangles by symbol. triangles is not copied and must
// not be modified afterwards.
func NewDetector(
	triangles []domain.Triangle,
	params domain.Params,
	tradeSize float64,
	cache *PriceCache,
	gate *CooldownGate,
	risk *RiskLimiter,
	obs ports.Observer,
) *Detector {
	if obs == nil {
		obs = ports.NopObserver{}
	}
	index := make(map[string][]int, len(triangles)*3)
	for i, t := range triangles {
		for _, s := range t.Symbols() {
			index[s] = append(index[s], i)
		}
	}
	return &Detector{
		params:    params,
		tradeSize: tradeSize,
		cache:     cache,
		gate:      gate,
		risk:      risk,
		obs:       obs,
		triangles: triangles,
		index:     index,
		newID:     func() string { return uuid.New().String() },
	}
}

// Triangles returns the triangle set the detector was built with.
func (d *Detector) Triangles() []domain.Triangle {
	return d.triangles
}

// OnQuote stores q and returns the triggers it produced. Symbols that belong
// to no triangle are ignored and not cached.
func (d *Detector) OnQuote(symbol string, q domain.Quote, now time.Time) []Decision {
	idx, ok := d.index[symbol]
	if !ok {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache.Upsert(symbol, q)

	var out []Decision
	for _, i := range idx {
		if dec, ok := d.evaluate(d.triangles[i], now); ok {
			out = append(out, dec)
		}
	}
	return out
}

// evaluate runs the gates for one triangle. Caller holds d.mu.
func (d *Detector) evaluate(tri domain.Triangle, now time.Time) (Decision, bool) {
	key := tri.Key()

	if !d.gate.Elapsed(key, now) {
		d.obs.Skipped(tri, ports.SkipCooldown)
		return Decision{}, false
	}

	legs, ok := d.cache.Legs(tri)
	if !ok {
		d.obs.Skipped(tri, ports.SkipMissing)
		return Decision{}, false
	}

	if !d.params.HasLiquidity(legs) {
		d.obs.Skipped(tri, ports.SkipLiquidity)
		return Decision{}, false
	}

	ev := domain.Evaluate(legs, d.params)
	d.obs.Evaluated(tri, ev)
	if !ev.Eligible(d.params.MinEdge) {
		d.obs.Skipped(tri, ports.SkipEdge)
		return Decision{}, false
	}

	res, err := d.risk.Reserve(d.tradeSize)
	if err != nil {
		// Refused: no retry within this evaluation, no cooldown mark.
		slog.Debug("trigger refused", "triangle", key, "edge", ev.Edge, "err", err)
		d.obs.Skipped(tri, ports.SkipCapacity)
		return Decision{}, false
	}

	// Marcar antes de despachar: un burst de quotes no puede re-disparar el mismo triángulo.
	d.gate.Mark(key, now)

	return Decision{
		Trigger: domain.Trigger{
			ID:          d.newID(),
			Triangle:    tri,
			Direction:   ev.Direction,
			Edge:        ev.Edge,
			Notional:    d.tradeSize,
			Legs:        legs,
			TriggeredAt: now,
		},
		Reservation: res,
	}, true
}
