package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// Place implements ports.OrderPlacer with a LIMIT order. Quantity is rounded
// down to the lot step and price to the tick size of the symbol, so
// FetchTradingSymbols must have run first. Orders under the symbol's minimum
// quantity or notional fail with domain.ErrOrderTooSmall without being sent.
func (c *Client) Place(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	rules, ok := c.rules(req.Symbol)
	if !ok {
		return domain.OrderResult{}, fmt.Errorf("binance.Place: %s: %w", req.Symbol, domain.ErrUnknownSymbol)
	}
	qty := rules.quantity(req.Quantity)
	price := rules.price(req.LimitPrice)
	if err := rules.check(qty, price); err != nil {
		return domain.OrderResult{}, fmt.Errorf("binance.Place: %s: %w", req.Symbol, err)
	}

	tif := req.TimeInForce
	if tif == "" {
		tif = domain.ImmediateOrCancel
	}
	clientID := req.ClientID
	if clientID == "" {
		clientID = uuid.New().String()
	}

	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("type", "LIMIT")
	params.Set("timeInForce", string(tif))
	params.Set("quantity", qty.String())
	params.Set("price", price.String())
	params.Set("newClientOrderId", clientID)
	params.Set("newOrderRespType", "RESULT")

	var resp orderResponse
	if err := c.signed(ctx, http.MethodPost, "/api/v3/order", params, &resp); err != nil {
		return domain.OrderResult{}, fmt.Errorf("binance.Place: %s %s: %w", req.Side, req.Symbol, err)
	}
	return toOrderResult(resp), nil
}

// CancelAll implements ports.OrderPlacer. "Unknown order" from the exchange
// maps to domain.ErrNothingToCancel.
func (c *Client) CancelAll(ctx context.Context, symbol string) error {
	params := url.Values{}
	params.Set("symbol", symbol)

	err := c.signed(ctx, http.MethodDelete, "/api/v3/openOrders", params, nil)
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeUnknownOrder {
		return fmt.Errorf("binance.CancelAll: %s: %w", symbol, domain.ErrNothingToCancel)
	}
	return fmt.Errorf("binance.CancelAll: %s: %w", symbol, err)
}
