package engine

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/event"
)

// Worker lifecycle states.
const (
	workerRunning int32 = iota
	workerStopping
	workerStopped
)

// messageKind distinguishes queue entries: client commands, read-only
// depth queries, and the stop sentinel that unblocks a parked worker.
type messageKind uint8

const (
	msgCommand messageKind = iota
	msgDepth
	msgStop
)

type message struct {
	kind   messageKind
	cmd    domain.Command
	levels int
	reply  chan DepthSnapshot
}

// DepthSnapshot is a consistent aggregated view of one instrument's
// book, taken by the owning worker between commands.
type DepthSnapshot struct {
	Instrument string       `json:"instrument"`
	Bids       []PriceLevel `json:"bids"`
	Asks       []PriceLevel `json:"asks"`
	Timestamp  int64        `json:"timestamp"`
}

// Worker owns the order book for exactly one instrument and applies
// commands to it from a single goroutine. Commands are processed in
// the exact order they were enqueued, which the Engine guarantees is
// the order they arrived. The book, its index, and the sequence
// counter are touched by the worker goroutine only, so book mutations
// need no locking.
type Worker struct {
	instrument string
	book       *OrderBook
	queue      chan message
	done       chan struct{}
	state      atomic.Int32
	sink       event.Sink
	clock      *event.Clock
	logger     *slog.Logger
}

// newWorker creates a worker for the instrument and starts its
// processing goroutine.
func newWorker(instrument string, queueSize int, sink event.Sink, clock *event.Clock, logger *slog.Logger) *Worker {
	w := &Worker{
		instrument: instrument,
		book:       NewOrderBook(instrument),
		queue:      make(chan message, queueSize),
		done:       make(chan struct{}),
		sink:       sink,
		clock:      clock,
		logger:     logger.With(slog.String("instrument", instrument)),
	}
	go w.run()
	return w
}

// enqueue places a command at the tail of the worker's queue. It
// returns ErrEngineStopped if the worker has already terminated.
func (w *Worker) enqueue(cmd domain.Command) error {
	select {
	case w.queue <- message{kind: msgCommand, cmd: cmd}:
		return nil
	case <-w.done:
		return domain.ErrEngineStopped
	}
}

// Depth requests an aggregated book snapshot through the worker's
// queue. Routing the query through the queue keeps all book access on
// the worker goroutine and means the snapshot observes every command
// enqueued before it.
func (w *Worker) Depth(ctx context.Context, levels int) (DepthSnapshot, error) {
	reply := make(chan DepthSnapshot, 1)
	select {
	case w.queue <- message{kind: msgDepth, levels: levels, reply: reply}:
	case <-w.done:
		return DepthSnapshot{}, domain.ErrEngineStopped
	case <-ctx.Done():
		return DepthSnapshot{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-w.done:
		return DepthSnapshot{}, domain.ErrEngineStopped
	case <-ctx.Done():
		return DepthSnapshot{}, ctx.Err()
	}
}

// stop transitions the worker to Stopping, unblocks its goroutine with
// a sentinel, and waits for it to finish any command already dequeued.
// Commands enqueued before the sentinel are still processed.
func (w *Worker) stop(ctx context.Context) error {
	if !w.state.CompareAndSwap(workerRunning, workerStopping) {
		return nil
	}
	select {
	case w.queue <- message{kind: msgStop}:
	case <-w.done:
	}
	select {
	case <-w.done:
		w.state.Store(workerStopped)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the worker's serial processing loop. A panic here is a
// programming error in the matching logic; it terminates this worker
// only and never cascades to other instruments or the router.
func (w *Worker) run() {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker terminated by panic", slog.Any("panic", r))
		}
	}()
	for {
		msg := <-w.queue
		switch msg.kind {
		case msgCommand:
			w.process(msg.cmd)
		case msgDepth:
			msg.reply <- w.snapshot(msg.levels)
		case msgStop:
			return
		}
	}
}

// process applies one client command to this worker's book.
func (w *Worker) process(cmd domain.Command) {
	switch cmd.Type {
	case domain.CommandBuy, domain.CommandSell:
		w.matchLimit(cmd)
	case domain.CommandCancel:
		w.cancel(cmd.OrderID)
	}
}

// matchLimit runs the matching loop for an incoming buy or sell:
// repeatedly fill against the best opposing resting order while the
// prices cross, then rest any remainder on the book. Fills happen at
// the resting order's price for min(incoming, resting) quantity, and a
// resting order emptied by a fill leaves the book (and its index)
// immediately, so the best bid stays strictly below the best ask once
// the loop ends.
func (w *Worker) matchLimit(cmd domain.Command) {
	incoming := &domain.Order{
		OrderID:    cmd.OrderID,
		Instrument: w.instrument,
		Side:       cmd.Side(),
		Price:      cmd.Price,
		Quantity:   cmd.Quantity,
	}

	for incoming.Quantity > 0 {
		resting, ok := w.book.BestOpposite(incoming.Side)
		if !ok || !crosses(incoming, resting) {
			break
		}

		fill := incoming.Quantity
		if resting.Quantity < fill {
			fill = resting.Quantity
		}
		incoming.Quantity -= fill
		resting.Quantity -= fill

		w.sink.Publish(event.Event{
			Kind:       event.KindExecuted,
			Instrument: w.instrument,
			RestingID:  resting.OrderID,
			IncomingID: incoming.OrderID,
			Price:      resting.Price,
			Quantity:   fill,
			Timestamp:  w.clock.Now(),
		})

		if resting.Quantity == 0 {
			w.book.Remove(resting.OrderID)
		}
	}

	if incoming.Quantity > 0 {
		w.book.Insert(incoming)
		w.sink.Publish(event.Event{
			Kind:       event.KindAdded,
			Instrument: w.instrument,
			Side:       incoming.Side,
			OrderID:    incoming.OrderID,
			Price:      incoming.Price,
			Quantity:   incoming.Quantity,
			Timestamp:  w.clock.Now(),
		})
	}
}

// crosses reports whether the incoming order's price permits matching
// against the given resting order on the opposite side.
func crosses(incoming, resting *domain.Order) bool {
	if incoming.Side == domain.SideBuy {
		return resting.Price <= incoming.Price
	}
	return resting.Price >= incoming.Price
}

// cancel removes the order with the given ID from the book if it is
// still resting. A cancel for an unknown or already-filled order is a
// normal negative outcome reported as a rejected delete; matched
// orders leave the index at match time, so the two cases are
// indistinguishable here.
func (w *Worker) cancel(orderID uint32) {
	accepted := w.book.Remove(orderID)
	w.sink.Publish(event.Event{
		Kind:       event.KindDeleted,
		Instrument: w.instrument,
		OrderID:    orderID,
		Accepted:   accepted,
		Timestamp:  w.clock.Now(),
	})
}

// snapshot aggregates the current book into at most the requested
// number of price levels per side.
func (w *Worker) snapshot(levels int) DepthSnapshot {
	return DepthSnapshot{
		Instrument: w.instrument,
		Bids:       w.book.TopBids(levels),
		Asks:       w.book.TopAsks(levels),
		Timestamp:  w.clock.Now(),
	}
}
