// Package engine implements the matching core: per-instrument order
// books, one serial worker per instrument, and the router that
// delivers commands to the right worker. Different instruments run in
// parallel; commands for one instrument are applied strictly in
// arrival order.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/event"
)

// DefaultQueueSize is the per-worker command queue capacity used when
// the caller passes a non-positive size.
const DefaultQueueSize = 1024

// Engine routes commands to per-instrument workers. The instrument →
// worker registry is the only state shared across callers and is
// guarded by a lock held just for lookup-or-create; once a worker
// exists its handle stays valid for the engine's lifetime (workers are
// never removed), so routing after registration takes only a read
// lock and command processing never serializes across instruments.
type Engine struct {
	mu        sync.RWMutex
	workers   map[string]*Worker
	stopped   bool
	queueSize int
	sink      event.Sink
	clock     *event.Clock
	logger    *slog.Logger
}

// New creates an engine publishing events to sink.
func New(sink event.Sink, clock *event.Clock, queueSize int, logger *slog.Logger) *Engine {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Engine{
		workers:   make(map[string]*Worker),
		queueSize: queueSize,
		sink:      sink,
		clock:     clock,
		logger:    logger,
	}
}

// Route delivers cmd to the worker for its instrument, creating the
// worker on first use. Enqueue order for one instrument equals the
// order Route was called for that instrument. Routing has no business
// failure modes; it errors only once the engine is shut down.
func (e *Engine) Route(cmd domain.Command) error {
	w, err := e.worker(cmd.Instrument)
	if err != nil {
		return err
	}
	return w.enqueue(cmd)
}

// worker returns the worker for the instrument, creating and starting
// it if this is the instrument's first use. The double-checked write
// lock makes concurrent first-uses race-free: exactly one worker is
// ever created per instrument.
func (e *Engine) worker(instrument string) (*Worker, error) {
	e.mu.RLock()
	w, ok := e.workers[instrument]
	stopped := e.stopped
	e.mu.RUnlock()
	if ok {
		return w, nil
	}
	if stopped {
		return nil, domain.ErrEngineStopped
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, domain.ErrEngineStopped
	}
	// Re-check after acquiring the write lock.
	if w, ok = e.workers[instrument]; ok {
		return w, nil
	}
	w = newWorker(instrument, e.queueSize, e.sink, e.clock, e.logger)
	e.workers[instrument] = w
	e.logger.Debug("instrument worker started", slog.String("instrument", instrument))
	return w, nil
}

// RejectCancel emits a rejected Deleted event for a cancel that could
// not be routed to any worker. The cancel wire format carries no
// instrument; the transport resolves it from the orders a connection
// has submitted, and a cancel for an order this process never saw has
// no owning worker to consult.
func (e *Engine) RejectCancel(orderID uint32) {
	e.sink.Publish(event.Event{
		Kind:      event.KindDeleted,
		OrderID:   orderID,
		Accepted:  false,
		Timestamp: e.clock.Now(),
	})
}

// Depth returns an aggregated book snapshot for the instrument. It
// never creates a worker: querying an instrument no command has ever
// referenced reports ErrUnknownInstrument.
func (e *Engine) Depth(ctx context.Context, instrument string, levels int) (DepthSnapshot, error) {
	e.mu.RLock()
	w, ok := e.workers[instrument]
	e.mu.RUnlock()
	if !ok {
		return DepthSnapshot{}, domain.ErrUnknownInstrument
	}
	return w.Depth(ctx, levels)
}

// Instruments returns the sorted symbols of all instruments that have
// ever been routed a command.
func (e *Engine) Instruments() []string {
	e.mu.RLock()
	out := make([]string, 0, len(e.workers))
	for instrument := range e.workers {
		out = append(out, instrument)
	}
	e.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Shutdown stops accepting new instruments, then stops every worker
// and waits for each to finish the commands already on its queue. The
// caller should stop the transport first so no routes race the stop
// sentinels.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.stopped = true
	workers := make([]*Worker, 0, len(e.workers))
	for _, w := range e.workers {
		workers = append(workers, w)
	}
	e.mu.Unlock()

	for _, w := range workers {
		if err := w.stop(ctx); err != nil {
			return err
		}
	}
	return nil
}
