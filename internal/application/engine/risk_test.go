package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/triarb/internal/domain"
)

func TestRiskLimiter_CanTradeUntilMax(t *testing.T) {
	r := NewRiskLimiter(2, 1000, true)
	assert.True(t, r.CanTrade())

	r.RecordTrade(1.5)
	assert.True(t, r.CanTrade())
	r.RecordTrade(-0.5)
	assert.False(t, r.CanTrade())

	s := r.State()
	assert.Equal(t, 2, s.TradeCount)
	assert.InDelta(t, 1.0, s.CumulativePnL, 1e-12)
	assert.InDelta(t, 1001.0, s.Balance, 1e-12)
}

func TestRiskLimiter_ReservationCountsAgainstMax(t *testing.T) {
	r := NewRiskLimiter(1, 1000, false)

	res, err := r.Reserve(50)
	require.NoError(t, err)
	assert.False(t, r.CanTrade())

	_, err = r.Reserve(50)
	assert.ErrorIs(t, err, domain.ErrCapacityExhausted)

	r.Release(res)
	assert.True(t, r.CanTrade())
	assert.Equal(t, 0, r.State().TradeCount)
}

func TestRiskLimiter_CommitIsCountedOnce(t *testing.T) {
	r := NewRiskLimiter(5, 1000, true)
	res, err := r.Reserve(50)
	require.NoError(t, err)

	r.Commit(res, 2)
	r.Commit(res, 2)
	r.Release(res)

	s := r.State()
	assert.Equal(t, 1, s.TradeCount)
	assert.Equal(t, 0, s.Reserved)
	assert.InDelta(t, 1002.0, s.Balance, 1e-12)
}

func TestRiskLimiter_PaperBalanceGate(t *testing.T) {
	r := NewRiskLimiter(10, 80, true)

	_, err := r.Reserve(50)
	require.NoError(t, err)

	// 30 free after the first reservation
	_, err = r.Reserve(50)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 1, r.State().Reserved)
}

func TestRiskLimiter_LiveIgnoresBalance(t *testing.T) {
	r := NewRiskLimiter(10, 1000, false)
	res, err := r.Reserve(1_000_000)
	require.NoError(t, err)

	r.Commit(res, 2)
	s := r.State()
	assert.Zero(t, s.Balance, "live mode has no simulated balance")
	assert.InDelta(t, 2.0, s.CumulativePnL, 1e-12)
}

func TestRiskLimiter_ConcurrentReserveNeverExceedsMax(t *testing.T) {
	r := NewRiskLimiter(10, 1_000_000, true)

	var ok atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Reserve(50)
			if err == nil {
				ok.Add(1)
				r.Commit(res, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), ok.Load())
	assert.Equal(t, 10, r.State().TradeCount)
	assert.False(t, r.CanTrade())
}

func TestCooldownGate(t *testing.T) {
	g := NewCooldownGate(time.Minute)

	assert.True(t, g.Elapsed("ADA-BNB", t0))
	_, ok := g.Last("ADA-BNB")
	assert.False(t, ok, "Elapsed must not create an entry")

	g.Mark("ADA-BNB", t0)
	assert.False(t, g.Elapsed("ADA-BNB", t0.Add(59*time.Second)))
	assert.True(t, g.Elapsed("ADA-BNB", t0.Add(time.Minute)))
	assert.True(t, g.Elapsed("XRP-BNB", t0), "window is per triangle")
	assert.Equal(t, time.Minute, g.Window())
}

func TestPriceCache_LastWriteWins(t *testing.T) {
	c := NewPriceCache()
	_, ok := c.Get("ADAUSDT")
	assert.False(t, ok)

	c.Upsert("ADAUSDT", domain.Quote{BestBid: 1, BestAsk: 1.1})
	c.Upsert("ADAUSDT", domain.Quote{BestBid: 0.9, BestAsk: 1.0})

	q, ok := c.Get("ADAUSDT")
	require.True(t, ok)
	assert.Equal(t, 0.9, q.BestBid)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Legs(adaBNB)
	assert.False(t, ok)
}
