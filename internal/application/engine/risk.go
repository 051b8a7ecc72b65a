package engine

import (
	"fmt"
	"sync"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// Reservation is a slot taken on the RiskLimiter before a trigger is
// dispatched. It must be settled exactly once with Commit or Release.
type Reservation struct {
	notional float64
	settled  bool
}

// RiskLimiter caps the number of trades and keeps the running PnL.
//
// The trade counter only moves up. In-flight executions hold a reservation
// that counts against the cap, so two triangles triggering at the same time
// cannot both take the last slot.
type RiskLimiter struct {
	mu           sync.Mutex
	maxTrades    int
	trackBalance bool

	tradeCount       int
	reserved         int
	reservedNotional float64
	pnl              float64
	balance          float64
}

// NewRiskLimiter creates a limiter. When trackBalance is set (paper mode)
// reservations also need free balance to cover the notional. Otherwise
// startBalance is ignored and Balance stays zero.
func NewRiskLimiter(maxTrades int, startBalance float64, trackBalance bool) *RiskLimiter {
	r := &RiskLimiter{
		maxTrades:    maxTrades,
		trackBalance: trackBalance,
	}
	if trackBalance {
		r.balance = startBalance
	}
	return r
}

// CanTrade reports whether another trade may start.
func (r *RiskLimiter) CanTrade() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canTradeLocked()
}

func (r *RiskLimiter) canTradeLocked() bool {
	return r.tradeCount+r.reserved < r.maxTrades
}

// RecordTrade counts a finished trade and books its PnL.
func (r *RiskLimiter) RecordTrade(pnl float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordLocked(pnl)
}

func (r *RiskLimiter) recordLocked(pnl float64) {
	r.tradeCount++
	r.pnl += pnl
	if r.trackBalance {
		r.balance += pnl
	}
}

// Reserve takes a slot for a trade of the given notional.
// Refusals have no side effects.
func (r *RiskLimiter) Reserve(notional float64) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.canTradeLocked() {
		return nil, fmt.Errorf("engine.Reserve: %d/%d trades: %w",
			r.tradeCount+r.reserved, r.maxTrades, domain.ErrCapacityExhausted)
	}
	if r.trackBalance && r.balance-r.reservedNotional < notional {
		return nil, fmt.Errorf("engine.Reserve: balance %.2f < %.2f: %w",
			r.balance-r.reservedNotional, notional, domain.ErrInsufficientBalance)
	}
	r.reserved++
	r.reservedNotional += notional
	return &Reservation{notional: notional}, nil
}

// Commit turns a reservation into a recorded trade.
func (r *RiskLimiter) Commit(res *Reservation, pnl float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.settleLocked(res) {
		return
	}
	r.recordLocked(pnl)
}

// Release returns a reservation without recording a trade.
func (r *RiskLimiter) Release(res *Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleLocked(res)
}

func (r *RiskLimiter) settleLocked(res *Reservation) bool {
	if res == nil || res.settled {
		return false
	}
	res.settled = true
	r.reserved--
	r.reservedNotional -= res.notional
	return true
}

// State returns a snapshot of the account.
func (r *RiskLimiter) State() domain.EngineState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.EngineState{
		TradeCount:    r.tradeCount,
		Reserved:      r.reserved,
		CumulativePnL: r.pnl,
		Balance:       r.balance,
	}
}
