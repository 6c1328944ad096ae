// Package event defines the normalized output of the matching engine:
// every book mutation is reported as an Added, Executed, or Deleted
// event carrying a monotonic timestamp, appended to a Sink.
package event

import (
	"time"

	"github.com/tickerlab/matchd/internal/domain"
)

// Kind identifies the type of an event.
type Kind uint8

const (
	// KindAdded reports an order resting on the book.
	KindAdded Kind = iota
	// KindExecuted reports a fill between a resting and an incoming order.
	KindExecuted
	// KindDeleted reports the outcome of a cancel request.
	KindDeleted
)

// Event is one normalized engine output record. Fields are populated
// per kind: Added uses Side/OrderID/Price/Quantity, Executed uses
// RestingID/IncomingID/Price/Quantity, Deleted uses OrderID/Accepted.
// Instrument is set on every event so downstream consumers can key by
// symbol even when the wire representation omits it.
type Event struct {
	Kind       Kind
	Instrument string
	Side       domain.Side
	OrderID    uint32
	RestingID  uint32
	IncomingID uint32
	Price      uint32
	Quantity   uint32
	Accepted   bool
	Timestamp  int64
}

// Clock produces monotonic nanosecond timestamps with no guaranteed
// relation to wall-clock time. Timestamps are sampled by the owning
// worker at the moment an event is produced.
type Clock struct {
	origin time.Time
}

// NewClock creates a clock whose timestamps count from now.
func NewClock() *Clock {
	return &Clock{origin: time.Now()}
}

// Now returns nanoseconds elapsed since the clock's origin, read from
// the monotonic clock.
func (c *Clock) Now() int64 {
	return time.Since(c.origin).Nanoseconds()
}
