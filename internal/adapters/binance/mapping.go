package binance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// bookTickerStream devuelve el nombre de stream para un símbolo.
func bookTickerStream(symbol string) string {
	return strings.ToLower(symbol) + "@bookTicker"
}

// toQuote convierte el payload de bookTicker en un domain.Quote.
// Devuelve false si falta el símbolo o algún precio no parsea.
func toQuote(data map[string]any) (string, domain.Quote, bool) {
	sym, _ := data["s"].(string)
	if sym == "" {
		return "", domain.Quote{}, false
	}
	var q domain.Quote
	var ok bool
	if q.BestBid, ok = num(data["b"]); !ok {
		return "", domain.Quote{}, false
	}
	if q.BidQty, ok = num(data["B"]); !ok {
		return "", domain.Quote{}, false
	}
	if q.BestAsk, ok = num(data["a"]); !ok {
		return "", domain.Quote{}, false
	}
	if q.AskQty, ok = num(data["A"]); !ok {
		return "", domain.Quote{}, false
	}
	return sym, q, true
}

func num(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// symbolRules son los incrementos y mínimos de orden de un símbolo.
type symbolRules struct {
	step        decimal.Decimal
	minQty      decimal.Decimal
	tick        decimal.Decimal
	minNotional decimal.Decimal
}

func rulesFrom(filters []symbolFilter) symbolRules {
	var r symbolRules
	for _, f := range filters {
		switch f.FilterType {
		case "LOT_SIZE":
			r.step, _ = decimal.NewFromString(f.StepSize)
			r.minQty, _ = decimal.NewFromString(f.MinQty)
		case "PRICE_FILTER":
			r.tick, _ = decimal.NewFromString(f.TickSize)
		case "NOTIONAL", "MIN_NOTIONAL":
			r.minNotional, _ = decimal.NewFromString(f.MinNotional)
		}
	}
	return r
}

// check rechaza órdenes que el exchange rechazaría por tamaño.
// qty y price ya vienen redondeados.
func (r symbolRules) check(qty, price decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("quantity below lot step %s: %w", r.step, domain.ErrOrderTooSmall)
	}
	if qty.LessThan(r.minQty) {
		return fmt.Errorf("quantity %s below min qty %s: %w", qty, r.minQty, domain.ErrOrderTooSmall)
	}
	if n := qty.Mul(price); n.LessThan(r.minNotional) {
		return fmt.Errorf("notional %s below min notional %s: %w", n, r.minNotional, domain.ErrOrderTooSmall)
	}
	return nil
}

// quantity rounds q down to the lot step.
func (r symbolRules) quantity(q float64) decimal.Decimal {
	d := decimal.NewFromFloat(q)
	if r.step.IsPositive() {
		d = d.Div(r.step).Floor().Mul(r.step)
	}
	return d
}

// price rounds p to the nearest tick.
func (r symbolRules) price(p float64) decimal.Decimal {
	d := decimal.NewFromFloat(p)
	if r.tick.IsPositive() {
		d = d.Div(r.tick).Round(0).Mul(r.tick)
	}
	return d
}

func toOrderResult(resp orderResponse) domain.OrderResult {
	executed, _ := decimal.NewFromString(resp.ExecutedQty)
	quote, _ := decimal.NewFromString(resp.CummulativeQuoteQty)
	return domain.OrderResult{
		OrderID:     fmt.Sprint(resp.OrderID),
		ClientID:    resp.ClientOrderID,
		Symbol:      resp.Symbol,
		Status:      resp.Status,
		ExecutedQty: executed.InexactFloat64(),
		QuoteQty:    quote.InexactFloat64(),
	}
}
