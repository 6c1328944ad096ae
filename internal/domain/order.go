package domain

// Order is the mutable matching state for one resting or incoming
// order. An order is owned exclusively by the instrument worker of its
// instrument for its whole lifetime: it is created when a buy/sell
// command is processed, mutated only by that worker while it rests on
// the book, and dropped when fully matched or cancelled.
type Order struct {
	OrderID    uint32
	Instrument string
	Side       Side
	Price      uint32
	// Quantity only ever decreases as the order is matched. An order
	// whose quantity reaches zero is fully filled and leaves the book.
	Quantity uint32
	// Sequence is assigned when the order first rests on the book and
	// breaks ties between orders at the same price (FIFO).
	Sequence uint64
}
