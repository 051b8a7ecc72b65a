package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/triarb/internal/domain"
)

func TestDispatcher_InlineWhenNoWorkers(t *testing.T) {
	var ran []string
	d := NewDispatcher(0, 0, func(_ context.Context, dec Decision) {
		ran = append(ran, dec.Trigger.ID)
	})
	d.Start(context.Background())

	require.NoError(t, d.Submit(context.Background(), Decision{Trigger: domain.Trigger{ID: "a"}}))
	assert.Equal(t, []string{"a"}, ran)
	d.Stop()
}

func TestDispatcher_QueueFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var ran []string

	d := NewDispatcher(1, 1, func(_ context.Context, dec Decision) {
		if dec.Trigger.ID == "first" {
			close(started)
			<-release
		}
		mu.Lock()
		ran = append(ran, dec.Trigger.ID)
		mu.Unlock()
	})
	d.Start(context.Background())

	require.NoError(t, d.Submit(context.Background(), Decision{Trigger: domain.Trigger{ID: "first"}}))
	<-started
	require.NoError(t, d.Submit(context.Background(), Decision{Trigger: domain.Trigger{ID: "second"}}))

	err := d.Submit(context.Background(), Decision{Trigger: domain.Trigger{ID: "third"}})
	assert.ErrorIs(t, err, domain.ErrDispatchQueueFull)

	close(release)
	d.Stop()

	assert.Equal(t, []string{"first", "second"}, ran)

	err = d.Submit(context.Background(), Decision{Trigger: domain.Trigger{ID: "late"}})
	assert.ErrorIs(t, err, domain.ErrDispatchQueueFull)
}
