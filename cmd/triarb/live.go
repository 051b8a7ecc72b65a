package main

import (
	"log/slog"

	"github.com/alejandrodnm/triarb/config"
	"github.com/alejandrodnm/triarb/internal/adapters/binance"
	"github.com/alejandrodnm/triarb/internal/application/engine/live"
	"github.com/alejandrodnm/triarb/internal/ports"
)

func newLiveExecutor(cfg *config.Config, client *binance.Client, obs ports.Observer) *live.Executor {
	slog.Warn("=== LIVE TRADING MODE: real orders will be placed ===",
		"trade_size", cfg.Trading.TradeSize,
		"max_trades", cfg.Trading.MaxTrades,
		"leg_timeout", cfg.LegTimeout(),
	)
	return live.New(client, live.Config{
		Fee:        cfg.Trading.Fee,
		LegTimeout: cfg.LegTimeout(),
	}, obs)
}
