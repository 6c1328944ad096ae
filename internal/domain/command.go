package domain

// Side indicates whether an order buys or sells. It is fixed at
// creation and never changes for the lifetime of the order.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

// String returns the wire representation of the side.
func (s Side) String() string {
	if s == SideSell {
		return "S"
	}
	return "B"
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// CommandType identifies the kind of client request.
type CommandType uint8

const (
	CommandBuy CommandType = iota
	CommandSell
	CommandCancel
)

// Command is an immutable value describing one client request. It is
// produced by the transport layer and consumed by the engine; cancel
// commands carry only the order ID.
type Command struct {
	Type       CommandType
	OrderID    uint32
	Instrument string
	Price      uint32
	Quantity   uint32
}

// Side returns the book side for a buy or sell command. It must not
// be called on cancel commands.
func (c Command) Side() Side {
	if c.Type == CommandSell {
		return SideSell
	}
	return SideBuy
}
