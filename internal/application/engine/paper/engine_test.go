package paper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/triarb/internal/domain"
)

func TestExecutor_Execute(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := New()
	e.now = func() time.Time { return at }

	trig := domain.Trigger{
		ID:        "trig-1",
		Triangle:  domain.NewTriangle("ADA", "BNB", "USDT"),
		Direction: domain.Reverse,
		Edge:      0.004,
		Notional:  50,
	}

	out, err := e.Execute(context.Background(), trig)

	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "trig-1", out.TriggerID)
	assert.Equal(t, "ADA-BNB", out.TriangleKey)
	assert.Equal(t, domain.Reverse, out.Direction)
	assert.InDelta(t, 0.2, out.RealizedPnL, 1e-12)
	assert.Equal(t, 50.0, out.NotionalSize)
	assert.Equal(t, domain.ModePaper, out.Mode)
	assert.Equal(t, at, out.Timestamp)
	assert.Equal(t, domain.ModePaper, e.Mode())
}

func TestExecutor_Execute_Rejects(t *testing.T) {
	e := New()

	_, err := e.Execute(context.Background(), domain.Trigger{Notional: 0, Edge: 0.01})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Execute(ctx, domain.Trigger{Notional: 50, Edge: 0.01})
	assert.ErrorIs(t, err, context.Canceled)
}
