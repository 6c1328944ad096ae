package engine

import (
	"github.com/google/btree"

	"github.com/tickerlab/matchd/internal/domain"
)

// bookEntry is one resting order keyed for the B-tree: price priority
// first, then arrival sequence within a price level.
type bookEntry struct {
	price uint32
	seq   uint64
	order *domain.Order
}

// bidLess orders the bid side by price descending, then sequence
// ascending. Min() therefore returns the best bid (highest price,
// earliest arrival).
func bidLess(a, b bookEntry) bool {
	if a.price != b.price {
		return a.price > b.price
	}
	return a.seq < b.seq
}

// askLess orders the ask side by price ascending, then sequence
// ascending. Min() returns the best ask (lowest price, earliest
// arrival).
func askLess(a, b bookEntry) bool {
	if a.price != b.price {
		return a.price < b.price
	}
	return a.seq < b.seq
}

// PriceLevel is an aggregated view of all resting orders at one price.
type PriceLevel struct {
	Price    uint32 `json:"price"`
	Quantity uint64 `json:"quantity"`
	Orders   int    `json:"orders"`
}

// OrderBook holds the resting orders for a single instrument: bids and
// asks in two B-trees plus an order-ID index for O(log n) cancellation
// without scanning price levels. The book is not safe for concurrent
// use; it is owned by exactly one instrument worker and only that
// worker's goroutine touches it.
type OrderBook struct {
	instrument string
	bids       *btree.BTreeG[bookEntry]
	asks       *btree.BTreeG[bookEntry]
	index      map[uint32]bookEntry
	nextSeq    uint64
}

// NewOrderBook creates an empty order book for the given instrument.
func NewOrderBook(instrument string) *OrderBook {
	const degree = 32
	return &OrderBook{
		instrument: instrument,
		bids:       btree.NewG[bookEntry](degree, bidLess),
		asks:       btree.NewG[bookEntry](degree, askLess),
		index:      make(map[uint32]bookEntry),
	}
}

// Insert rests o at the tail of its price level, assigning it the next
// arrival sequence number, and indexes it by order ID.
func (ob *OrderBook) Insert(o *domain.Order) {
	ob.nextSeq++
	o.Sequence = ob.nextSeq
	entry := bookEntry{price: o.Price, seq: o.Sequence, order: o}
	if o.Side == domain.SideBuy {
		ob.bids.ReplaceOrInsert(entry)
	} else {
		ob.asks.ReplaceOrInsert(entry)
	}
	ob.index[o.OrderID] = entry
}

// Remove deletes the order with the given ID from its side and from
// the index. It reports whether the order was present; removing an
// unknown or already-resolved order is a no-op returning false.
func (ob *OrderBook) Remove(orderID uint32) bool {
	entry, ok := ob.index[orderID]
	if !ok {
		return false
	}
	delete(ob.index, orderID)
	if entry.order.Side == domain.SideBuy {
		ob.bids.Delete(entry)
	} else {
		ob.asks.Delete(entry)
	}
	return true
}

// BestBid returns the resting bid with the highest price and earliest
// arrival, if any.
func (ob *OrderBook) BestBid() (*domain.Order, bool) {
	entry, ok := ob.bids.Min()
	if !ok {
		return nil, false
	}
	return entry.order, true
}

// BestAsk returns the resting ask with the lowest price and earliest
// arrival, if any.
func (ob *OrderBook) BestAsk() (*domain.Order, bool) {
	entry, ok := ob.asks.Min()
	if !ok {
		return nil, false
	}
	return entry.order, true
}

// BestOpposite returns the best resting order on the side an incoming
// order of the given side would match against.
func (ob *OrderBook) BestOpposite(side domain.Side) (*domain.Order, bool) {
	if side == domain.SideBuy {
		return ob.BestAsk()
	}
	return ob.BestBid()
}

// TopBids returns up to n aggregated price levels from the bid side,
// best first (price descending).
func (ob *OrderBook) TopBids(n int) []PriceLevel {
	return topLevels(ob.bids, n)
}

// TopAsks returns up to n aggregated price levels from the ask side,
// best first (price ascending).
func (ob *OrderBook) TopAsks(n int) []PriceLevel {
	return topLevels(ob.asks, n)
}

// topLevels iterates a side in priority order and aggregates entries
// into at most n price levels.
func topLevels(tree *btree.BTreeG[bookEntry], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	tree.Ascend(func(entry bookEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.price {
			levels[len(levels)-1].Quantity += uint64(entry.order.Quantity)
			levels[len(levels)-1].Orders++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:    entry.price,
			Quantity: uint64(entry.order.Quantity),
			Orders:   1,
		})
		return true
	})
	return levels
}

// BidCount returns the number of individual resting bids.
func (ob *OrderBook) BidCount() int {
	return ob.bids.Len()
}

// AskCount returns the number of individual resting asks.
func (ob *OrderBook) AskCount() int {
	return ob.asks.Len()
}
