package binance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sugawarayuuta/sonnet"

	"github.com/alejandrodnm/triarb/internal/ports"
)

const (
	defaultStreamBase   = "wss://stream.binance.com:9443"
	defaultPerConn      = 200
	defaultPingInterval = 30 * time.Second
	handshakeTimeout    = 10 * time.Second

	backoffBase = 500 * time.Millisecond
	backoffMax  = 30 * time.Second
)

// Stream is the combined bookTicker feed. Symbols are split across
// connections of at most perConn streams; each connection reconnects on its
// own with capped exponential backoff.
type Stream struct {
	base         string
	perConn      int
	pingInterval time.Duration
	dialer       websocket.Dialer

	// handler calls are serialised across connections
	mu sync.Mutex
}

// NewStream creates a feed. Zero values fall back to production defaults.
func NewStream(base string, perConn int, pingInterval time.Duration) *Stream {
	if base == "" {
		base = defaultStreamBase
	}
	if perConn <= 0 {
		perConn = defaultPerConn
	}
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return &Stream{
		base:         strings.TrimRight(base, "/"),
		perConn:      perConn,
		pingInterval: pingInterval,
		dialer:       websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// StreamURL builds the combined-stream URL for symbols.
func (s *Stream) StreamURL(symbols []string) string {
	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = bookTickerStream(sym)
	}
	return s.base + "/stream?streams=" + strings.Join(streams, "/")
}

// Run implements ports.QuoteFeed. It blocks until ctx is done.
func (s *Stream) Run(ctx context.Context, symbols []string, handle ports.QuoteHandler) error {
	if len(symbols) == 0 {
		return errors.New("binance.Stream.Run: no symbols")
	}

	chunks := chunk(symbols, s.perConn)
	slog.Info("binance: starting stream", "symbols", len(symbols), "connections", len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(id int, syms []string) {
			defer wg.Done()
			s.runConn(ctx, id, syms, handle)
		}(i, c)
	}
	wg.Wait()
	return ctx.Err()
}

// runConn mantiene una conexión viva hasta que ctx termine.
func (s *Stream) runConn(ctx context.Context, id int, symbols []string, handle ports.QuoteHandler) {
	u := s.StreamURL(symbols)
	attempt := 0
	for ctx.Err() == nil {
		n, err := s.session(ctx, u, handle)
		if ctx.Err() != nil {
			return
		}
		if n > 0 {
			attempt = 0
		}
		delay := backoff(attempt)
		attempt++
		slog.Warn("binance: stream disconnected",
			"conn", id,
			"received", n,
			"retry_in", delay,
			"err", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// session dials once and reads until the connection drops. Returns the
// number of quotes delivered.
func (s *Stream) session(ctx context.Context, u string, handle ports.QuoteHandler) (int, error) {
	conn, _, err := s.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return 0, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	readTimeout := 3 * s.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go s.pingLoop(conn, done)

	n := 0
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return n, fmt.Errorf("read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var m combinedMessage
		if err := sonnet.Unmarshal(msg, &m); err != nil {
			slog.Debug("binance: undecodable message", "err", err)
			continue
		}
		sym, q, ok := toQuote(m.Data)
		if !ok {
			continue
		}
		s.mu.Lock()
		handle(sym, q)
		s.mu.Unlock()
		n++
	}
}

func (s *Stream) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(handshakeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				slog.Debug("binance: ping failed", "err", err)
				return
			}
		}
	}
}

func chunk(symbols []string, size int) [][]string {
	var out [][]string
	for len(symbols) > size {
		out = append(out, symbols[:size])
		symbols = symbols[size:]
	}
	if len(symbols) > 0 {
		out = append(out, symbols)
	}
	return out
}

// backoff devuelve base·2^attempt con tope en backoffMax.
func backoff(attempt int) time.Duration {
	d := backoffBase
	for i := 0; i < attempt && d < backoffMax; i++ {
		d *= 2
	}
	return min(d, backoffMax)
}
