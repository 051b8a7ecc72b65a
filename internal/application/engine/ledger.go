package engine

import (
	"sync"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// Ledger is the in-memory, append-only list of committed outcomes.
type Ledger struct {
	mu       sync.RWMutex
	outcomes []domain.TradeOutcome
}

// Append records a committed outcome.
func (l *Ledger) Append(o domain.TradeOutcome) {
	l.mu.Lock()
	l.outcomes = append(l.outcomes, o)
	l.mu.Unlock()
}

// All returns a copy of the ledger in commit order.
func (l *Ledger) All() []domain.TradeOutcome {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.TradeOutcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}
