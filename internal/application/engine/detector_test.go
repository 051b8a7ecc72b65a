package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/triarb/internal/domain"
)

type detectorFixture struct {
	det   *Detector
	cache *PriceCache
	gate  *CooldownGate
	risk  *RiskLimiter
	obs   *recordingObserver
}

func newDetectorFixture(params domain.Params, cooldown time.Duration, maxTrades int) detectorFixture {
	f := detectorFixture{
		cache: NewPriceCache(),
		gate:  NewCooldownGate(cooldown),
		risk:  NewRiskLimiter(maxTrades, 1000, true),
		obs:   newRecordingObserver(),
	}
	f.det = NewDetector([]domain.Triangle{adaBNB}, params, 50, f.cache, f.gate, f.risk, f.obs)
	return f
}

// feedAll pushes every quote and returns the decisions of the last update.
func (f detectorFixture) feedAll(quotes map[string]domain.Quote, now time.Time) []Decision {
	var out []Decision
	for _, sym := range adaBNB.Symbols() {
		out = append(out, f.det.OnQuote(sym, quotes[sym], now)...)
	}
	return out
}

func TestDetector_TriggersProfitableTriangle(t *testing.T) {
	f := newDetectorFixture(testParams(), time.Minute, 10)

	decs := f.feedAll(profitableQuotes(), t0)

	require.Len(t, decs, 1)
	trig := decs[0].Trigger
	assert.Equal(t, adaBNB, trig.Triangle)
	assert.Equal(t, domain.Forward, trig.Direction)
	assert.Greater(t, trig.Edge, 0.0015)
	assert.Equal(t, 50.0, trig.Notional)
	assert.Equal(t, t0, trig.TriggeredAt)
	assert.NotEmpty(t, trig.ID)

	last, ok := f.gate.Last(adaBNB.Key())
	require.True(t, ok)
	assert.Equal(t, t0, last)
	assert.Equal(t, 1, f.risk.State().Reserved)
}

func TestDetector_MissingLegSkipsWithoutMutation(t *testing.T) {
	f := newDetectorFixture(testParams(), time.Minute, 10)
	q := profitableQuotes()
	before := f.risk.State()

	assert.Empty(t, f.det.OnQuote("ADAUSDT", q["ADAUSDT"], t0))
	assert.Empty(t, f.det.OnQuote("BNBUSDT", q["BNBUSDT"], t0))

	_, marked := f.gate.Last(adaBNB.Key())
	assert.False(t, marked)
	assert.Equal(t, before, f.risk.State())
	assert.Equal(t, 2, f.obs.skips["missing_quote"])
	assert.Zero(t, f.obs.evals)
}

func TestDetector_LiquidityFloorSuppressesTrigger(t *testing.T) {
	f := newDetectorFixture(testParams(), time.Minute, 10)
	q := profitableQuotes()
	q["ADAUSDT"] = domain.Quote{BestBid: 1, BestAsk: 1, BidQty: 100, AskQty: 100}

	// edge alone would trigger
	legs := domain.Legs{AltQuote: q["ADAUSDT"], AltBase: q["ADABNB"], BaseQuote: q["BNBUSDT"]}
	require.True(t, domain.Evaluate(legs, testParams()).Eligible(0.0015))

	decs := f.feedAll(q, t0)

	assert.Empty(t, decs)
	assert.Equal(t, 1, f.obs.skips["liquidity"])
	_, marked := f.gate.Last(adaBNB.Key())
	assert.False(t, marked)
}

func TestDetector_CooldownSpacesTriggers(t *testing.T) {
	window := 60 * time.Second
	f := newDetectorFixture(testParams(), window, 100)
	q := profitableQuotes()

	var triggered []time.Time
	f.feedAll(q, t0) // first trigger at t0
	triggered = append(triggered, t0)

	for s := 1; s <= 180; s++ {
		now := t0.Add(time.Duration(s) * time.Second)
		for _, dec := range f.det.OnQuote("ADAUSDT", q["ADAUSDT"], now) {
			triggered = append(triggered, dec.Trigger.TriggeredAt)
		}
	}

	require.Equal(t, []time.Time{t0, t0.Add(60 * time.Second), t0.Add(120 * time.Second), t0.Add(180 * time.Second)}, triggered)
	for i := 1; i < len(triggered); i++ {
		assert.GreaterOrEqual(t, triggered[i].Sub(triggered[i-1]), window)
	}
}

func TestDetector_NoArbitrageFixedPointDoesNotTrigger(t *testing.T) {
	params := domain.Params{Fee: 0, Slippage: 0, MinEdge: 0, MinLiquidity: 0}
	f := newDetectorFixture(params, time.Minute, 10)
	q := map[string]domain.Quote{
		"ADAUSDT": {BestBid: 2, BestAsk: 2, BidQty: 1, AskQty: 1},
		"ADABNB":  {BestBid: 0.5, BestAsk: 0.5, BidQty: 1, AskQty: 1},
		"BNBUSDT": {BestBid: 4, BestAsk: 4, BidQty: 1, AskQty: 1},
	}

	decs := f.feedAll(q, t0)

	assert.Empty(t, decs)
	assert.Equal(t, 1, f.obs.evals)
	assert.Equal(t, 1, f.obs.skips["edge"])
}

func TestDetector_CapacityRefusalLeavesCooldownUntouched(t *testing.T) {
	f := newDetectorFixture(testParams(), time.Minute, 0)

	decs := f.feedAll(profitableQuotes(), t0)

	assert.Empty(t, decs)
	assert.Equal(t, 1, f.obs.skips["capacity"])
	_, marked := f.gate.Last(adaBNB.Key())
	assert.False(t, marked)
}

func TestDetector_IgnoresUnknownSymbols(t *testing.T) {
	f := newDetectorFixture(testParams(), time.Minute, 10)

	assert.Nil(t, f.det.OnQuote("DOGEUSDT", domain.Quote{BestBid: 1, BestAsk: 1}, t0))
	assert.Equal(t, 0, f.cache.Len())
}

func TestDetector_OnlyTouchedTrianglesAreEvaluated(t *testing.T) {
	ethTri := domain.NewTriangle("ADA", "ETH", "USDT")
	xrpTri := domain.NewTriangle("XRP", "BNB", "USDT")
	obs := newRecordingObserver()
	det := NewDetector([]domain.Triangle{adaBNB, ethTri, xrpTri}, testParams(), 50,
		NewPriceCache(), NewCooldownGate(time.Minute), NewRiskLimiter(10, 1000, true), obs)

	det.OnQuote("ADAUSDT", profitableQuotes()["ADAUSDT"], t0)
	// ADA-BNB and ADA-ETH reference ADAUSDT; XRP-BNB does not.
	assert.Equal(t, 2, obs.skips["missing_quote"])

	det.OnQuote("BNBUSDT", profitableQuotes()["BNBUSDT"], t0)
	// ADA-BNB and XRP-BNB reference BNBUSDT.
	assert.Equal(t, 4, obs.skips["missing_quote"])
}
