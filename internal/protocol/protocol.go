// Package protocol implements the line-oriented text wire format:
// parsing client command lines and rendering engine events. The
// matching core never sees a malformed command; everything rejected
// here is a protocol error surfaced to the transport layer.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/event"
)

// ErrMalformedCommand is wrapped by every parse failure.
var ErrMalformedCommand = errors.New("malformed_command")

// ParseCommand parses one input line. Blank lines and lines starting
// with '#' are ignored and reported via skip. Any other first token
// must be B, S, or C with the exact field count and types:
//
//	B <order_id> <instrument> <price> <quantity>
//	S <order_id> <instrument> <price> <quantity>
//	C <order_id>
func ParseCommand(line string) (cmd domain.Command, skip bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' {
		return domain.Command{}, true, nil
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "B", "S":
		if len(fields) != 5 {
			return domain.Command{}, false, fmt.Errorf("%w: expected 5 fields, got %d", ErrMalformedCommand, len(fields))
		}
		orderID, err := parseUint32(fields[1])
		if err != nil {
			return domain.Command{}, false, fmt.Errorf("%w: order_id: %v", ErrMalformedCommand, err)
		}
		instrument := fields[2]
		if err := domain.ValidateSymbol(instrument); err != nil {
			return domain.Command{}, false, fmt.Errorf("%w: instrument %q", ErrMalformedCommand, instrument)
		}
		price, err := parseUint32(fields[3])
		if err != nil || price == 0 {
			return domain.Command{}, false, fmt.Errorf("%w: price must be a positive uint32", ErrMalformedCommand)
		}
		quantity, err := parseUint32(fields[4])
		if err != nil || quantity == 0 {
			return domain.Command{}, false, fmt.Errorf("%w: quantity must be a positive uint32", ErrMalformedCommand)
		}
		cmdType := domain.CommandBuy
		if fields[0] == "S" {
			cmdType = domain.CommandSell
		}
		return domain.Command{
			Type:       cmdType,
			OrderID:    orderID,
			Instrument: instrument,
			Price:      price,
			Quantity:   quantity,
		}, false, nil

	case "C":
		if len(fields) != 2 {
			return domain.Command{}, false, fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformedCommand, len(fields))
		}
		orderID, err := parseUint32(fields[1])
		if err != nil {
			return domain.Command{}, false, fmt.Errorf("%w: order_id: %v", ErrMalformedCommand, err)
		}
		return domain.Command{Type: domain.CommandCancel, OrderID: orderID}, false, nil

	default:
		return domain.Command{}, false, fmt.Errorf("%w: unknown command %q", ErrMalformedCommand, fields[0])
	}
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// AppendEvent appends the wire representation of ev (without trailing
// newline) to dst and returns the extended slice:
//
//	<B|S> <order_id> <instrument> <price> <quantity> <timestamp>
//	E <resting_id> <incoming_id> <incoming_id> <price> <quantity> <timestamp>
//	X <order_id> <A|R> <timestamp>
func AppendEvent(dst []byte, ev event.Event) []byte {
	switch ev.Kind {
	case event.KindAdded:
		dst = append(dst, ev.Side.String()...)
		dst = append(dst, ' ')
		dst = strconv.AppendUint(dst, uint64(ev.OrderID), 10)
		dst = append(dst, ' ')
		dst = append(dst, ev.Instrument...)
		dst = append(dst, ' ')
		dst = strconv.AppendUint(dst, uint64(ev.Price), 10)
		dst = append(dst, ' ')
		dst = strconv.AppendUint(dst, uint64(ev.Quantity), 10)
	case event.KindExecuted:
		dst = append(dst, 'E', ' ')
		dst = strconv.AppendUint(dst, uint64(ev.RestingID), 10)
		dst = append(dst, ' ')
		dst = strconv.AppendUint(dst, uint64(ev.IncomingID), 10)
		dst = append(dst, ' ')
		// The execution ID equals the incoming order's ID.
		dst = strconv.AppendUint(dst, uint64(ev.IncomingID), 10)
		dst = append(dst, ' ')
		dst = strconv.AppendUint(dst, uint64(ev.Price), 10)
		dst = append(dst, ' ')
		dst = strconv.AppendUint(dst, uint64(ev.Quantity), 10)
	case event.KindDeleted:
		dst = append(dst, 'X', ' ')
		dst = strconv.AppendUint(dst, uint64(ev.OrderID), 10)
		if ev.Accepted {
			dst = append(dst, ' ', 'A')
		} else {
			dst = append(dst, ' ', 'R')
		}
	}
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, ev.Timestamp, 10)
	return dst
}

// FormatEvent returns the wire representation of ev as a string.
func FormatEvent(ev event.Event) string {
	return string(AppendEvent(nil, ev))
}
