package engine

import (
	"sync"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// PriceCache holds the latest quote per symbol. Last write wins: the feed
// does not carry sequence numbers, so arrival order is the only order.
type PriceCache struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

// NewPriceCache returns an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{quotes: make(map[string]domain.Quote)}
}

// Upsert replaces whatever was stored for symbol.
func (c *PriceCache) Upsert(symbol string, q domain.Quote) {
	c.mu.Lock()
	c.quotes[symbol] = q
	c.mu.Unlock()
}

// Get returns the latest quote for symbol.
func (c *PriceCache) Get(symbol string) (domain.Quote, bool) {
	c.mu.RLock()
	q, ok := c.quotes[symbol]
	c.mu.RUnlock()
	return q, ok
}

// Legs returns the three quotes of t, or false if any of them is missing.
func (c *PriceCache) Legs(t domain.Triangle) (domain.Legs, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	aq, ok1 := c.quotes[t.SymbolAltQuote]
	ab, ok2 := c.quotes[t.SymbolAltBase]
	bq, ok3 := c.quotes[t.SymbolBaseQuote]
	if !ok1 || !ok2 || !ok3 {
		return domain.Legs{}, false
	}
	return domain.Legs{AltQuote: aq, AltBase: ab, BaseQuote: bq}, true
}

// Len returns the number of symbols with a quote.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}
