package domain

// Params are the economic knobs of the triangle calculation.
// Fee is applied multiplicatively on every leg; Slippage is one flat
// subtraction on the net edge, not a per-leg model.
type Params struct {
	Fee          float64 // taker fee per leg, e.g. 0.001
	Slippage     float64 // flat haircut on the round trip, e.g. 0.002
	MinEdge      float64 // strict threshold: edge must be > MinEdge
	MinLiquidity float64 // minimum bid depth in quote currency on every leg
}

// Evaluation is the outcome of pricing one triangle on one snapshot.
type Evaluation struct {
	Forward   float64 // final quote amount for 1 unit in, forward cycle
	Reverse   float64 // final quote amount for 1 unit in, reverse cycle
	Edge      float64 // max(Forward, Reverse) - 1 - Slippage
	Direction Direction
	MinDepth  float64 // min bid depth across the legs
}

// ForwardReturn prices QUOTE → ALT → BASE → QUOTE for one unit of quote.
// Buys ALT at the ALT/QUOTE ask, sells ALT at the ALT/BASE bid, sells BASE at
// the BASE/QUOTE bid.
func ForwardReturn(l Legs, fee float64) float64 {
	f := 1 - fee
	amt := (1 / l.AltQuote.BestAsk) * f
	amt = amt * l.AltBase.BestBid * f
	return amt * l.BaseQuote.BestBid * f
}

// ReverseReturn prices QUOTE → BASE → ALT → QUOTE for one unit of quote.
// Buys BASE at the BASE/QUOTE ask, buys ALT at the ALT/BASE ask, sells ALT at
// the ALT/QUOTE bid.
func ReverseReturn(l Legs, fee float64) float64 {
	f := 1 - fee
	amt := (1 / l.BaseQuote.BestAsk) * f
	amt = amt / l.AltBase.BestAsk * f
	return amt * l.AltQuote.BestBid * f
}

// Evaluate prices both directions and picks the better one.
// Ties go to Forward.
func Evaluate(l Legs, p Params) Evaluation {
	fwd := ForwardReturn(l, p.Fee)
	rev := ReverseReturn(l, p.Fee)

	ev := Evaluation{
		Forward:   fwd,
		Reverse:   rev,
		Direction: Forward,
		MinDepth:  l.MinBidDepth(),
	}
	best := fwd
	if rev > fwd {
		best = rev
		ev.Direction = Reverse
	}
	ev.Edge = best - 1 - p.Slippage
	return ev
}

// HasLiquidity reports whether every leg carries at least MinLiquidity at the bid.
func (p Params) HasLiquidity(l Legs) bool {
	return l.MinBidDepth() >= p.MinLiquidity
}

// Eligible reports whether the edge clears the strict MinEdge threshold.
func (e Evaluation) Eligible(minEdge float64) bool {
	return e.Edge > minEdge
}
