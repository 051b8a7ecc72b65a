package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alejandrodnm/triarb/config"
	"github.com/alejandrodnm/triarb/internal/adapters/binance"
	"github.com/alejandrodnm/triarb/internal/adapters/metrics"
	"github.com/alejandrodnm/triarb/internal/adapters/notify"
	"github.com/alejandrodnm/triarb/internal/adapters/storage"
	"github.com/alejandrodnm/triarb/internal/application/engine"
	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/alejandrodnm/triarb/internal/ports"
)

const stopFile = "STOP"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	mode := flag.String("mode", "", "paper|live (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	onceReport := flag.Bool("once-report", false, "discover triangles, print them and exit")
	history := flag.Duration("history", 0, "print journalled trades of the last window (e.g. 24h) and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *mode != "" {
		cfg.Trading.Mode = strings.ToLower(*mode)
	}
	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	slog.Info("triarb starting",
		"config", *configPath,
		"mode", cfg.Trading.Mode,
		"bases", cfg.Trading.Bases,
		"trade_size", cfg.Trading.TradeSize,
		"max_trades", cfg.Trading.MaxTrades,
		"cooldown", cfg.Cooldown(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *history > 0 {
		if cfg.Storage.DSN == "" {
			slog.Error("-history needs storage.dsn")
			os.Exit(1)
		}
		j, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer j.Close()
		if err := printHistory(ctx, j, notify.NewConsole(), *history, time.Now()); err != nil {
			slog.Error("history failed", "err", err)
		}
		return
	}

	client := binance.NewClient(cfg.API.RESTBase, cfg.API.APIKey, cfg.API.APISecret)
	triangles, err := discoverTriangles(ctx, client, cfg.Trading)
	if err != nil {
		slog.Error("triangle discovery failed", "err", err)
		os.Exit(1)
	}

	console := notify.NewConsole()
	console.Banner(domain.Mode(strings.ToUpper(cfg.Trading.Mode)), len(triangles), len(domain.StreamSymbols(triangles)))
	if *onceReport {
		printTriangles(triangles)
		return
	}
	if len(triangles) == 0 {
		slog.Error("no triangles available for the configured bases", "bases", cfg.Trading.Bases)
		os.Exit(1)
	}

	observer := metrics.NewObserver()
	observer.Registry().MustRegister(collectors.NewBuildInfoCollector())
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, observer.Handler())
		defer shutdown(srv)
	}

	var journal ports.TradeJournal
	if cfg.Storage.DSN != "" {
		j, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer j.Close()
		journal = j
	}

	go watchStopFile(ctx, cancel)

	var exec ports.Executor
	switch cfg.Trading.Mode {
	case config.ModeLive:
		exec = newLiveExecutor(cfg, client, observer)
	default:
		exec = newPaperExecutor()
	}

	opts := []engine.Option{
		engine.WithObserver(observer),
		engine.WithNotifier(console),
	}
	if journal != nil {
		opts = append(opts, engine.WithJournal(journal))
	}
	eng := engine.New(triangles, exec, engineConfig(cfg), opts...)

	started := time.Now()
	feed := binance.NewStream(cfg.API.StreamBase, cfg.API.StreamsPerConn, cfg.PingInterval())
	if err := eng.Run(ctx, feed); err != nil {
		slog.Error("engine exited with error", "err", err)
		console.Report(eng.Mode(), eng.Outcomes(), eng.State(), started)
		os.Exit(1)
	}

	console.Report(eng.Mode(), eng.Outcomes(), eng.State(), started)
	if !eng.CanTrade() {
		slog.Info("trade cap reached", "max_trades", cfg.Trading.MaxTrades)
	}
	slog.Info("triarb stopped cleanly", "trades", eng.State().TradeCount)
}

func engineConfig(cfg *config.Config) engine.Config {
	t := cfg.Trading
	return engine.Config{
		Params: domain.Params{
			Fee:          t.Fee,
			Slippage:     t.Slippage,
			MinEdge:      t.MinEdge,
			MinLiquidity: t.MinLiqQuote,
		},
		Cooldown:     cfg.Cooldown(),
		TradeSize:    t.TradeSize,
		MaxTrades:    t.MaxTrades,
		StartBalance: t.StartBalance,
		Workers:      t.ExecWorkers,
		QueueSize:    t.ExecQueue,
		ExecTimeout:  cfg.ExecTimeout(),
	}
}

// discoverTriangles builds the triangle set from the exchange's TRADING symbols.
func discoverTriangles(ctx context.Context, symbols ports.SymbolProvider, t config.TradingConfig) ([]domain.Triangle, error) {
	tradable, err := symbols.FetchTradingSymbols(ctx)
	if err != nil {
		return nil, err
	}
	triangles := domain.BuildTriangles(tradable, t.Bases, t.QuoteAsset)
	slog.Info("triangles discovered", "tradable_symbols", len(tradable), "triangles", len(triangles))
	return triangles, nil
}

func printTriangles(triangles []domain.Triangle) {
	for _, t := range triangles {
		syms := t.Symbols()
		fmt.Printf("%-20s %s\n", t.Key(), strings.Join(syms[:], " "))
	}
}

func serveMetrics(addr string, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "err", err, "addr", addr)
		}
	}()
	slog.Info("metrics listening", "addr", addr)
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

// watchStopFile cancela el contexto si aparece un archivo STOP en el cwd.
func watchStopFile(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := os.Stat(stopFile); err == nil {
				slog.Info("STOP file detected, shutting down")
				os.Remove(stopFile)
				cancel()
				return
			}
		}
	}
}

// setupLogger configura slog. Con log.file, escribe también a un archivo
// rotado por lumberjack. Devuelve la función que cierra el archivo.
func setupLogger(cfg config.LogConfig) func() {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // días
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { rotator.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	return closeFn
}
