package live

import (
	"github.com/alejandrodnm/triarb/internal/domain"
)

// PlanLegs builds the three IOC orders of a trigger. Each leg's quantity is
// the previous leg's expected output after fees, priced off the quote
// snapshot the trigger was decided on. ClientID is left empty.
//
// Forward:  BUY ALT/QUOTE @ask, SELL ALT/BASE @bid, SELL BASE/QUOTE @bid.
// Reverse:  BUY BASE/QUOTE @ask, BUY ALT/BASE @ask, SELL ALT/QUOTE @bid.
func PlanLegs(trig domain.Trigger, fee float64) [3]domain.OrderRequest {
	t, l, f := trig.Triangle, trig.Legs, 1-fee

	if trig.Direction == domain.Reverse {
		baseQty := trig.Notional / l.BaseQuote.BestAsk
		altQty := baseQty * f / l.AltBase.BestAsk
		return [3]domain.OrderRequest{
			ioc(t.SymbolBaseQuote, domain.SideBuy, baseQty, l.BaseQuote.BestAsk),
			ioc(t.SymbolAltBase, domain.SideBuy, altQty, l.AltBase.BestAsk),
			ioc(t.SymbolAltQuote, domain.SideSell, altQty*f, l.AltQuote.BestBid),
		}
	}

	altQty := trig.Notional / l.AltQuote.BestAsk
	sellAlt := altQty * f
	baseQty := sellAlt * l.AltBase.BestBid * f
	return [3]domain.OrderRequest{
		ioc(t.SymbolAltQuote, domain.SideBuy, altQty, l.AltQuote.BestAsk),
		ioc(t.SymbolAltBase, domain.SideSell, sellAlt, l.AltBase.BestBid),
		ioc(t.SymbolBaseQuote, domain.SideSell, baseQty, l.BaseQuote.BestBid),
	}
}

func ioc(symbol string, side domain.Side, qty, price float64) domain.OrderRequest {
	return domain.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Quantity:    qty,
		LimitPrice:  price,
		TimeInForce: domain.ImmediateOrCancel,
	}
}

// capToFill shrinks next so it never spends more than the previous leg
// delivered after fees. The legs are chained: what prev received is what next
// pays with. A BUY receives the symbol's base asset, a SELL its quote asset.
func capToFill(next, prev domain.OrderRequest, res domain.OrderResult, fee float64) domain.OrderRequest {
	f := 1 - fee
	var avail float64
	if prev.Side == domain.SideBuy {
		avail = res.ExecutedQty * f
	} else {
		received := res.QuoteQty
		if received <= 0 {
			received = res.ExecutedQty * prev.LimitPrice
		}
		avail = received * f
	}

	if next.Side == domain.SideSell {
		next.Quantity = min(next.Quantity, avail)
	} else if next.LimitPrice > 0 {
		next.Quantity = min(next.Quantity, avail/next.LimitPrice)
	}
	return next
}
