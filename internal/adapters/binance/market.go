package binance

import (
	"context"
	"fmt"
	"log/slog"
)

const statusTrading = "TRADING"

// FetchTradingSymbols implements ports.SymbolProvider. It also caches the
// lot and tick sizes of every trading symbol for order formatting.
func (c *Client) FetchTradingSymbols(ctx context.Context) (map[string]bool, error) {
	var info exchangeInfoResponse
	if err := c.get(ctx, "/api/v3/exchangeInfo", nil, &info); err != nil {
		return nil, fmt.Errorf("binance.FetchTradingSymbols: %w", err)
	}

	trading := make(map[string]bool, len(info.Symbols))
	rules := make(map[string]symbolRules, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != statusTrading {
			continue
		}
		trading[s.Symbol] = true
		rules[s.Symbol] = rulesFrom(s.Filters)
	}

	c.mu.Lock()
	c.filters = rules
	c.mu.Unlock()

	slog.Debug("binance: exchange info loaded", "symbols", len(info.Symbols), "trading", len(trading))
	return trading, nil
}

func (c *Client) rules(symbol string) (symbolRules, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.filters[symbol]
	return r, ok
}
