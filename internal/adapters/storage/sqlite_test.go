package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/triarb/internal/adapters/storage"
	"github.com/alejandrodnm/triarb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOutcome(id string, dir domain.Direction, at time.Time) domain.TradeOutcome {
	return domain.TradeOutcome{
		ID:           id,
		TriggerID:    "trig-" + id,
		TriangleKey:  "ADA-BNB",
		Pair:         "ADA/BNB",
		Direction:    dir,
		Edge:         0.0042,
		NotionalSize: 50,
		RealizedPnL:  0.21,
		Mode:         domain.ModePaper,
		Timestamp:    at,
	}
}

func TestSQLiteJournal_SaveAndGetOutcomes(t *testing.T) {
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, j.SaveOutcome(ctx, makeOutcome("b", domain.Reverse, now)))
	require.NoError(t, j.SaveOutcome(ctx, makeOutcome("a", domain.Forward, now.Add(-time.Second))))

	got, err := j.GetOutcomes(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordenados por tiempo asc
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, domain.Forward, got[0].Direction)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, domain.Reverse, got[1].Direction)
	assert.True(t, now.Equal(got[1].Timestamp))
	assert.Equal(t, domain.ModePaper, got[1].Mode)
	assert.InDelta(t, 0.21, got[1].RealizedPnL, 1e-12)
}

func TestSQLiteJournal_GetOutcomes_EmptyRange(t *testing.T) {
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	got, err := j.GetOutcomes(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteJournal_DuplicateOutcomeRejected(t *testing.T) {
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	o := makeOutcome("dup", domain.Forward, time.Now())
	require.NoError(t, j.SaveOutcome(ctx, o))
	assert.Error(t, j.SaveOutcome(ctx, o))
}

func TestSQLiteJournal_SaveAbort(t *testing.T) {
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	now := time.Now()
	err = j.SaveAbort(ctx, domain.Abort{
		TriggerID:   "trig-1",
		TriangleKey: "ADA-BNB",
		Direction:   domain.Forward,
		Edge:        0.003,
		Reason:      "leg 2 (ADABNB): insufficient balance",
		Cancels: []domain.CancelResult{
			{Symbol: "ADAUSDT", Kind: domain.CancelNothing},
			{Symbol: "ADABNB", Kind: domain.CancelOK},
		},
		Timestamp: now,
	})
	require.NoError(t, err)

	n, err := j.CountAborts(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// fuera de la ventana
	n, err = j.CountAborts(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}
