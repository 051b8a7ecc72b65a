package domain

// Side is the order side.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TimeInForce is the order lifetime instruction.
type TimeInForce string

const (
	// ImmediateOrCancel fills what it can immediately and cancels the rest.
	ImmediateOrCancel TimeInForce = "IOC"
)

// OrderRequest is a single conditional limit order for one leg.
type OrderRequest struct {
	ClientID    string
	Symbol      string
	Side        Side
	Quantity    float64 // in the symbol's base asset
	LimitPrice  float64
	TimeInForce TimeInForce
}

// OrderResult is what the exchange acknowledged for a placed order.
type OrderResult struct {
	OrderID     string
	ClientID    string
	Symbol      string
	Status      string // exchange status, e.g. FILLED, EXPIRED
	ExecutedQty float64
	QuoteQty    float64
}

// CancelKind classifies the outcome of a compensating cancellation.
type CancelKind string

const (
	CancelOK           CancelKind = "OK"
	CancelNothing      CancelKind = "NOTHING_TO_CANCEL"
	CancelNetworkError CancelKind = "NETWORK_ERROR"
)

// CancelResult is the per-symbol outcome of a best-effort CancelAll.
type CancelResult struct {
	Symbol string
	Kind   CancelKind
	Err    error
}
