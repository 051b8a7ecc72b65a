package ports

import "context"

// SymbolProvider lists the markets the exchange currently allows trading on.
type SymbolProvider interface {
	// FetchTradingSymbols returns the set of symbols whose status is TRADING.
	FetchTradingSymbols(ctx context.Context) (map[string]bool, error)
}
