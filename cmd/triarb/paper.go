package main

import (
	"log/slog"

	"github.com/alejandrodnm/triarb/internal/application/engine/paper"
)

func newPaperExecutor() *paper.Executor {
	slog.Info("=== PAPER TRADING MODE ===")
	return paper.New()
}
