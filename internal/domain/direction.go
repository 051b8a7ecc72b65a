package domain

// Direction is the cyclic order in which a triangle is traded.
// The zero value is Forward.
type Direction int

const (
	// Forward trades QUOTE → ALT → BASE → QUOTE.
	Forward Direction = iota
	// Reverse trades QUOTE → BASE → ALT → QUOTE.
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "FORWARD"
	case Reverse:
		return "REVERSE"
	default:
		return "UNKNOWN"
	}
}

// Path renders the cycle for a triangle, e.g. "USDT → ADA → BNB → USDT".
func (d Direction) Path(t Triangle) string {
	q := t.Quote
	if q == "" {
		q = DefaultQuoteAsset
	}
	if d == Reverse {
		return q + " → " + t.Base + " → " + t.Alt + " → " + q
	}
	return q + " → " + t.Alt + " → " + t.Base + " → " + q
}
