package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/alejandrodnm/triarb/internal/ports"
)

const (
	defaultExecTimeout = 10 * time.Second
	journalTimeout     = 5 * time.Second
)

// Config holds the knobs shared by paper and live trading.
type Config struct {
	Params       domain.Params
	Cooldown     time.Duration
	TradeSize    float64
	MaxTrades    int
	StartBalance float64
	Workers      int
	QueueSize    int
	ExecTimeout  time.Duration
}

// Option customises an Engine.
type Option func(*Engine)

// WithJournal sets the audit sink for outcomes and aborts.
func WithJournal(j ports.TradeJournal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithNotifier sets the per-trade console reporter.
func WithNotifier(n ports.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithObserver sets the metrics observer.
func WithObserver(o ports.Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.obs = o
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine wires the detection and gating pipeline to one Executor.
// Paper and live trading differ only in the Executor they pass in.
type Engine struct {
	cfg      Config
	exec     ports.Executor
	journal  ports.TradeJournal
	notifier ports.Notifier
	obs      ports.Observer
	now      func() time.Time

	cache      *PriceCache
	gate       *CooldownGate
	risk       *RiskLimiter
	ledger     *Ledger
	detector   *Detector
	dispatcher *Dispatcher
}

// New builds an engine over a fixed triangle set.
func New(triangles []domain.Triangle, exec ports.Executor, cfg Config, opts ...Option) *Engine {
	if cfg.ExecTimeout <= 0 {
		cfg.ExecTimeout = defaultExecTimeout
	}
	e := &Engine{
		cfg:    cfg,
		exec:   exec,
		obs:    ports.NopObserver{},
		now:    time.Now,
		cache:  NewPriceCache(),
		gate:   NewCooldownGate(cfg.Cooldown),
		risk:   NewRiskLimiter(cfg.MaxTrades, cfg.StartBalance, exec.Mode() == domain.ModePaper),
		ledger: &Ledger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.detector = NewDetector(triangles, cfg.Params, cfg.TradeSize, e.cache, e.gate, e.risk, e.obs)
	e.dispatcher = NewDispatcher(cfg.Workers, cfg.QueueSize, e.execute)
	return e
}

// Run starts the workers and feeds every quote from feed into the engine
// until ctx is done. In-flight executions finish before it returns; queued
// ones that had not started are aborted.
func (e *Engine) Run(ctx context.Context, feed ports.QuoteFeed) error {
	e.Start(ctx)
	defer e.Stop()

	symbols := domain.StreamSymbols(e.detector.Triangles())
	slog.Info("engine running",
		"mode", e.exec.Mode(),
		"triangles", len(e.detector.Triangles()),
		"streams", len(symbols),
		"workers", e.cfg.Workers,
		"cooldown", e.gate.Window(),
	)

	err := feed.Run(ctx, symbols, func(symbol string, q domain.Quote) {
		e.HandleQuote(ctx, symbol, q)
	})
	slog.Info("feed stopped", "cached_symbols", e.cache.Len(), "trades", e.risk.State().TradeCount)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("engine.Run: %w", err)
	}
	return nil
}

// Start launches the execution workers.
func (e *Engine) Start(ctx context.Context) {
	e.dispatcher.Start(ctx)
}

// Stop waits for in-flight executions.
func (e *Engine) Stop() {
	e.dispatcher.Stop()
}

// HandleQuote routes one feed update through the detector and dispatches
// every trigger it produced.
func (e *Engine) HandleQuote(ctx context.Context, symbol string, q domain.Quote) {
	for _, dec := range e.detector.OnQuote(symbol, q, e.now()) {
		e.obs.Triggered(dec.Trigger)
		slog.Info("triangle triggered",
			"triangle", dec.Trigger.Triangle.Key(),
			"direction", dec.Trigger.Direction,
			"edge", dec.Trigger.Edge,
			"trigger_id", dec.Trigger.ID,
		)
		if err := e.dispatcher.Submit(ctx, dec); err != nil {
			e.risk.Release(dec.Reservation)
			e.abort(ctx, dec.Trigger, err)
		}
	}
}

// execute runs one decision to Committed or Aborted. A decision that has not
// started when ctx is done is aborted; once started it runs to completion,
// bounded only by ExecTimeout.
func (e *Engine) execute(ctx context.Context, dec Decision) {
	if err := ctx.Err(); err != nil {
		e.risk.Release(dec.Reservation)
		e.abort(ctx, dec.Trigger, fmt.Errorf("engine.execute: not started: %w", err))
		return
	}

	// Cortar un triángulo a medias deja exposición: el shutdown no cancela legs.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.ExecTimeout)
	defer cancel()

	outcome, err := e.exec.Execute(ctx, dec.Trigger)
	if err != nil {
		e.risk.Release(dec.Reservation)
		e.abort(ctx, dec.Trigger, err)
		return
	}

	e.risk.Commit(dec.Reservation, outcome.RealizedPnL)
	e.ledger.Append(outcome)
	e.obs.Committed(outcome)
	state := e.risk.State()

	slog.Info("trade committed",
		"triangle", outcome.TriangleKey,
		"direction", outcome.Direction,
		"edge", outcome.Edge,
		"pnl", outcome.RealizedPnL,
		"trades", state.TradeCount,
	)

	// El ctx de ejecución puede estar vencido; el journal usa uno propio.
	jctx, jcancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer jcancel()
	if e.journal != nil {
		if err := e.journal.SaveOutcome(jctx, outcome); err != nil {
			slog.Warn("journal outcome failed", "trade_id", outcome.ID, "err", err)
		}
	}
	if e.notifier != nil {
		if err := e.notifier.NotifyTrade(jctx, outcome, state); err != nil {
			slog.Warn("notify failed", "trade_id", outcome.ID, "err", err)
		}
	}
}

// abort records a refused or failed trigger. The triangle stays in cooldown.
func (e *Engine) abort(ctx context.Context, trig domain.Trigger, err error) {
	e.obs.Aborted(trig, err)

	a := domain.Abort{
		TriggerID:   trig.ID,
		TriangleKey: trig.Triangle.Key(),
		Direction:   trig.Direction,
		Edge:        trig.Edge,
		Reason:      err.Error(),
		Timestamp:   e.now(),
	}
	var legErr *domain.LegError
	if errors.As(err, &legErr) {
		a.Cancels = legErr.Cancels
	}

	if domain.IsRefusal(err) {
		slog.Warn("trigger refused", "triangle", a.TriangleKey, "err", err)
	} else {
		slog.Error("trigger aborted", "triangle", a.TriangleKey, "direction", trig.Direction, "err", err)
	}

	if e.journal == nil {
		return
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if jerr := e.journal.SaveAbort(jctx, a); jerr != nil {
		slog.Warn("journal abort failed", "trigger_id", trig.ID, "err", jerr)
	}
}

// State returns the current account snapshot.
func (e *Engine) State() domain.EngineState {
	return e.risk.State()
}

// Outcomes returns the committed trades in order.
func (e *Engine) Outcomes() []domain.TradeOutcome {
	return e.ledger.All()
}

// Triangles returns the triangle set.
func (e *Engine) Triangles() []domain.Triangle {
	return e.detector.Triangles()
}

// Mode reports the executor's mode.
func (e *Engine) Mode() domain.Mode {
	return e.exec.Mode()
}

// CanTrade reports whether the trade cap still has room.
func (e *Engine) CanTrade() bool {
	return e.risk.CanTrade()
}
