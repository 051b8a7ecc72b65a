package ports

import (
	"context"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// QuoteHandler receives every best bid/ask update in arrival order.
type QuoteHandler func(symbol string, q domain.Quote)

// QuoteFeed streams best bid/ask updates for a set of symbols until ctx is done.
// Reconnects are the feed's business; Run only returns on ctx cancellation or
// a non-recoverable setup error.
type QuoteFeed interface {
	Run(ctx context.Context, symbols []string, handle QuoteHandler) error
}
