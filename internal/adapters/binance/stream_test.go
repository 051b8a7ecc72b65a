package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/triarb/internal/domain"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamURL(t *testing.T) {
	s := NewStream("wss://example.test:9443/", 0, 0)
	assert.Equal(t,
		"wss://example.test:9443/stream?streams=adausdt@bookTicker/adabnb@bookTicker",
		s.StreamURL([]string{"ADAUSDT", "ADABNB"}))
}

func TestChunk(t *testing.T) {
	syms := []string{"A", "B", "C", "D", "E"}
	assert.Equal(t, [][]string{{"A", "B"}, {"C", "D"}, {"E"}}, chunk(syms, 2))
	assert.Equal(t, [][]string{{"A", "B", "C", "D", "E"}}, chunk(syms, 200))
	assert.Nil(t, chunk(nil, 2))
}

func TestBackoff_Capped(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(0))
	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(3))
	assert.Equal(t, backoffMax, backoff(20))
}

func TestToQuote(t *testing.T) {
	sym, q, ok := toQuote(map[string]any{
		"u": float64(400900217), "s": "BNBUSDT",
		"b": "25.35190000", "B": "31.21000000",
		"a": "25.36520000", "A": "40.66000000",
	})
	require.True(t, ok)
	assert.Equal(t, "BNBUSDT", sym)
	assert.Equal(t, domain.Quote{BestBid: 25.3519, BidQty: 31.21, BestAsk: 25.3652, AskQty: 40.66}, q)

	_, _, ok = toQuote(map[string]any{"s": "BNBUSDT", "b": "x", "B": "1", "a": "1", "A": "1"})
	assert.False(t, ok)

	_, _, ok = toQuote(nil)
	assert.False(t, ok)
}

func TestStream_DeliversQuotesAndReconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var conns atomic.Int32
	var gotStreams atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStreams.Store(r.URL.Query().Get("streams"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := conns.Add(1)

		msgs := []string{
			`{"result":null,"id":1}`,
			`{"stream":"adausdt@bookTicker","data":{"u":1,"s":"ADAUSDT","b":"0.99","B":"100","a":"1.00","A":"200"}}`,
			`not json`,
		}
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		if n == 1 {
			return // drop the first connection to force a reconnect
		}
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var got []domain.Quote
	s := NewStream(wsURL(srv), 200, time.Second)

	err := s.Run(ctx, []string{"ADAUSDT", "ADABNB"}, func(symbol string, q domain.Quote) {
		assert.Equal(t, "ADAUSDT", symbol)
		mu.Lock()
		got = append(got, q)
		if len(got) == 2 {
			cancel()
		}
		mu.Unlock()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "adausdt@bookTicker/adabnb@bookTicker", gotStreams.Load())
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, domain.Quote{BestBid: 0.99, BidQty: 100, BestAsk: 1.00, AskQty: 200}, got[0])
}

func TestStream_RunRequiresSymbols(t *testing.T) {
	err := NewStream("", 0, 0).Run(context.Background(), nil, nil)
	assert.Error(t, err)
}
