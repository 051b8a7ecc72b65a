package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/triarb/internal/adapters/notify"
	"github.com/alejandrodnm/triarb/internal/ports"
)

// printHistory muestra lo que el journal registró en la última ventana.
// Solo lectura: el engine no arranca.
func printHistory(ctx context.Context, journal ports.TradeJournal, console *notify.Console, window time.Duration, now time.Time) error {
	from := now.Add(-window)
	outcomes, err := journal.GetOutcomes(ctx, from, now)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	aborts, err := journal.CountAborts(ctx, from, now)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	console.History(outcomes, aborts, from, now)
	return nil
}
