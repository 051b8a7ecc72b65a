package domain

// Quote is the latest best bid/ask snapshot for one traded symbol.
// BestAsk >= BestBid is assumed of upstream data and is not validated here.
type Quote struct {
	BestBid float64
	BestAsk float64
	BidQty  float64
	AskQty  float64
}

// BidDepth returns the quote-currency value resting at the best bid.
// This is the only figure the liquidity gate looks at.
func (q Quote) BidDepth() float64 {
	return q.BestBid * q.BidQty
}

// Legs is the quote snapshot of the three markets of a triangle at decision time.
type Legs struct {
	AltQuote  Quote // ALT/USDT
	AltBase   Quote // ALT/BASE
	BaseQuote Quote // BASE/USDT
}

// MinBidDepth returns the smallest bid-side depth across the three legs.
func (l Legs) MinBidDepth() float64 {
	return min(l.AltQuote.BidDepth(), l.AltBase.BidDepth(), l.BaseQuote.BidDepth())
}
