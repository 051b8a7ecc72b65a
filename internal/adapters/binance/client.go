package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/time/rate"
)

const (
	defaultRESTBase = "https://api.binance.com"

	// Rate limits al ~60% de los límites documentados.
	// REST weight: 6000/min, exchangeInfo pesa 20 → 10 req/s sobra.
	restRatePerSec = 10
	// Orders: 100/10s → 6/s.
	orderRatePerSec = 6

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
	recvWindowMs  = 5000

	codeUnknownOrder = -2011
)

// APIError is an error payload returned by the Binance REST API.
type APIError struct {
	Status int
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance: http %d code %d: %s", e.Status, e.Code, e.Msg)
}

// Client is the Binance spot REST client with rate limiting and retries.
// Public GETs are retried; signed order calls never are.
type Client struct {
	http         *http.Client
	restBase     string
	apiKey       string
	apiSecret    string
	limiter      *rate.Limiter
	orderLimiter *rate.Limiter
	now          func() time.Time

	mu      sync.RWMutex
	filters map[string]symbolRules
}

// NewClient creates a Client. An empty restBase uses production.
// apiKey and apiSecret may be empty for read-only use.
func NewClient(restBase, apiKey, apiSecret string) *Client {
	if restBase == "" {
		restBase = defaultRESTBase
	}
	return &Client{
		http:         &http.Client{Timeout: 10 * time.Second},
		restBase:     restBase,
		apiKey:       apiKey,
		apiSecret:    apiSecret,
		limiter:      rate.NewLimiter(restRatePerSec, 5),
		orderLimiter: rate.NewLimiter(orderRatePerSec, 3),
		now:          time.Now,
		filters:      make(map[string]symbolRules),
	}
}

// get hace un GET público con rate limiting y retries.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.restBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// signed sends one HMAC-SHA256 signed request. It is never retried: a
// timed-out order may still have reached the matching engine.
func (c *Client) signed(ctx context.Context, method, path string, params url.Values, out any) error {
	if c.apiKey == "" || c.apiSecret == "" {
		return errors.New("binance: api key and secret required for signed endpoints")
	}
	if err := c.orderLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("recvWindow", strconv.Itoa(recvWindowMs))
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	payload := params.Encode()
	u := c.restBase + path + "?" + payload + "&signature=" + c.sign(payload)

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// doWithRetry ejecuta la función con backoff exponencial, respetando el contexto.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 418 {
			resp.Body.Close()
			slog.Warn("binance: rate limited", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		err = decode(resp, out)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// decode reads resp into out, or turns a 4xx/5xx body into an *APIError.
func decode(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := sonnet.Unmarshal(body, apiErr); jerr != nil || apiErr.Msg == "" {
			apiErr.Msg = string(body)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := sonnet.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
