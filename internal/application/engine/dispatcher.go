package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/triarb/internal/domain"
)

// Dispatcher hands decisions to a bounded pool of execution workers so the
// feed path never waits on exchange round trips.
//
// With workers == 0 every decision runs inline on the caller's goroutine.
type Dispatcher struct {
	workers int
	run     func(context.Context, Decision)

	mu     sync.Mutex
	jobs   chan Decision
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. queue is the number of decisions that
// may wait for a free worker; it is at least workers.
func NewDispatcher(workers, queue int, run func(context.Context, Decision)) *Dispatcher {
	if workers < 0 {
		workers = 0
	}
	if queue < workers {
		queue = workers
	}
	d := &Dispatcher{workers: workers, run: run}
	if workers > 0 {
		d.jobs = make(chan Decision, queue)
	}
	return d
}

// Start launches the workers. They stop when Stop is called; ctx is passed
// to every execution.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for dec := range d.jobs {
				d.run(ctx, dec)
			}
		}()
	}
	slog.Debug("dispatcher started", "workers", d.workers, "queue", cap(d.jobs))
}

// Submit queues dec without blocking. It returns ErrDispatchQueueFull when
// every worker is busy and the queue is full, or the dispatcher is stopped.
func (d *Dispatcher) Submit(ctx context.Context, dec Decision) error {
	if d.workers == 0 {
		d.run(ctx, dec)
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrDispatchQueueFull
	}
	select {
	case d.jobs <- dec:
		return nil
	default:
		return domain.ErrDispatchQueueFull
	}
}

// Stop closes the queue and waits for queued executions to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.jobs != nil {
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
