package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/alejandrodnm/triarb/internal/ports"
)

var adaBNB = domain.NewTriangle("ADA", "BNB", "USDT")

// profitableQuotes is a forward-profitable ADA/BNB snapshot with deep books.
func profitableQuotes() map[string]domain.Quote {
	return map[string]domain.Quote{
		"ADAUSDT": {BestBid: 0.99, BestAsk: 1.00, BidQty: 10000, AskQty: 10000},
		"ADABNB":  {BestBid: 0.50, BestAsk: 0.501, BidQty: 10000, AskQty: 10000},
		"BNBUSDT": {BestBid: 2.10, BestAsk: 2.11, BidQty: 10000, AskQty: 10000},
	}
}

func testParams() domain.Params {
	return domain.Params{Fee: 0.001, Slippage: 0.002, MinEdge: 0.0015, MinLiquidity: 500}
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// mockJournal records what the engine journals.
type mockJournal struct {
	mu       sync.Mutex
	outcomes []domain.TradeOutcome
	aborts   []domain.Abort
}

func (m *mockJournal) SaveOutcome(_ context.Context, o domain.TradeOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
	return nil
}

func (m *mockJournal) SaveAbort(_ context.Context, a domain.Abort) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborts = append(m.aborts, a)
	return nil
}

func (m *mockJournal) GetOutcomes(_ context.Context, _, _ time.Time) ([]domain.TradeOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TradeOutcome(nil), m.outcomes...), nil
}

func (m *mockJournal) CountAborts(_ context.Context, _, _ time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.aborts), nil
}

func (m *mockJournal) Close() error { return nil }

type mockNotifier struct {
	mu     sync.Mutex
	trades []domain.TradeOutcome
	states []domain.EngineState
}

func (m *mockNotifier) NotifyTrade(_ context.Context, o domain.TradeOutcome, s domain.EngineState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, o)
	m.states = append(m.states, s)
	return nil
}

// failingExecutor aborts every trigger.
type failingExecutor struct {
	calls int
}

func (f *failingExecutor) Mode() domain.Mode { return domain.ModeLive }

func (f *failingExecutor) Execute(_ context.Context, _ domain.Trigger) (domain.TradeOutcome, error) {
	f.calls++
	return domain.TradeOutcome{}, errors.New("exchange unavailable")
}

// recordingObserver counts skip reasons.
type recordingObserver struct {
	ports.NopObserver
	mu    sync.Mutex
	skips map[ports.SkipReason]int
	evals int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{skips: make(map[ports.SkipReason]int)}
}

func (r *recordingObserver) Skipped(_ domain.Triangle, reason ports.SkipReason) {
	r.mu.Lock()
	r.skips[reason]++
	r.mu.Unlock()
}

func (r *recordingObserver) Evaluated(domain.Triangle, domain.Evaluation) {
	r.mu.Lock()
	r.evals++
	r.mu.Unlock()
}

// sliceFeed replays a fixed list of updates then returns.
type sliceFeed struct {
	updates []update
	gotSyms []string
}

type update struct {
	symbol string
	quote  domain.Quote
}

func (f *sliceFeed) Run(_ context.Context, symbols []string, handle ports.QuoteHandler) error {
	f.gotSyms = symbols
	for _, u := range f.updates {
		handle(u.symbol, u.quote)
	}
	return nil
}
