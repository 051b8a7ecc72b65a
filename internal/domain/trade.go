package domain

import "time"

// Mode identifies which execution strategy produced an outcome.
type Mode string

const (
	ModePaper Mode = "PAPER"
	ModeLive  Mode = "LIVE"
)

// Trigger is an eligible decision handed from the detector to an executor.
// Legs is the quote snapshot the decision was made on.
type Trigger struct {
	ID          string
	Triangle    Triangle
	Direction   Direction
	Edge        float64
	Notional    float64
	Legs        Legs
	TriggeredAt time.Time
}

// TradeOutcome is one committed entry of the append-only trade ledger.
// RealizedPnL is notional × edge, an estimate that is not reconciled against fills.
type TradeOutcome struct {
	ID           string
	TriggerID    string
	TriangleKey  string
	Pair         string
	Direction    Direction
	Edge         float64
	NotionalSize float64
	RealizedPnL  float64
	Mode         Mode
	Timestamp    time.Time
}

// Abort records a trigger that failed to execute. It is journalled for audit
// only; aborted triggers never enter the trade ledger.
type Abort struct {
	TriggerID   string
	TriangleKey string
	Direction   Direction
	Edge        float64
	Reason      string
	Cancels     []CancelResult
	Timestamp   time.Time
}

// EngineState is the running account of the session.
// Balance only moves in paper mode.
type EngineState struct {
	TradeCount    int
	Reserved      int
	CumulativePnL float64
	Balance       float64
}
