// Package store holds in-memory, thread-safe read models fed from the
// engine's event stream.
package store

import (
	"sync"

	"github.com/tickerlab/matchd/internal/event"
)

// Trade is one execution record kept for market-data queries.
type Trade struct {
	RestingID  uint32 `json:"resting_id"`
	IncomingID uint32 `json:"incoming_id"`
	Price      uint32 `json:"price"`
	Quantity   uint32 `json:"quantity"`
	Timestamp  int64  `json:"timestamp"`
}

// TradeLog records executed events per instrument with bounded
// retention, keyed by symbol. It implements event.Sink so it can be
// fanned the same stream the wire sink receives; non-execution events
// are ignored. Safe for concurrent use.
type TradeLog struct {
	mu     sync.RWMutex
	limit  int
	trades map[string][]Trade // symbol → trades (chronological)
}

// NewTradeLog creates an empty TradeLog keeping at most limit trades
// per instrument.
func NewTradeLog(limit int) *TradeLog {
	if limit <= 0 {
		limit = 1
	}
	return &TradeLog{
		limit:  limit,
		trades: make(map[string][]Trade),
	}
}

// Publish appends executed events to the instrument's chronological
// list, discarding the oldest entries beyond the retention limit.
func (l *TradeLog) Publish(ev event.Event) {
	if ev.Kind != event.KindExecuted {
		return
	}
	t := Trade{
		RestingID:  ev.RestingID,
		IncomingID: ev.IncomingID,
		Price:      ev.Price,
		Quantity:   ev.Quantity,
		Timestamp:  ev.Timestamp,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	trades := append(l.trades[ev.Instrument], t)
	if len(trades) > l.limit {
		trades = trades[len(trades)-l.limit:]
	}
	l.trades[ev.Instrument] = trades
}

// Recent returns up to n of the newest trades for the symbol in
// chronological order. Returns an empty slice when none exist.
func (l *TradeLog) Recent(symbol string, n int) []Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	trades := l.trades[symbol]
	if n > 0 && len(trades) > n {
		trades = trades[len(trades)-n:]
	}
	// Return a copy to avoid callers observing later appends.
	out := make([]Trade, len(trades))
	copy(out, trades)
	return out
}
