package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// TradeJournal is a write-mostly audit sink for committed outcomes and aborts.
// The engine only writes to it; the read side serves the -history report and
// never restores state.
type TradeJournal interface {
	SaveOutcome(ctx context.Context, outcome domain.TradeOutcome) error
	SaveAbort(ctx context.Context, abort domain.Abort) error

	// GetOutcomes returns outcomes journalled in [from, to], oldest first.
	GetOutcomes(ctx context.Context, from, to time.Time) ([]domain.TradeOutcome, error)
	// CountAborts returns how many aborts were journalled in [from, to].
	CountAborts(ctx context.Context, from, to time.Time) (int, error)

	Close() error
}
