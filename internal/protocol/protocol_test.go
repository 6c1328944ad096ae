package protocol

import (
	"errors"
	"testing"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/event"
)

func TestParseCommand_Buy(t *testing.T) {
	cmd, skip, err := ParseCommand("B 123 AAPL 150 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skip {
		t.Fatal("unexpected skip")
	}
	want := domain.Command{
		Type: domain.CommandBuy, OrderID: 123, Instrument: "AAPL", Price: 150, Quantity: 10,
	}
	if cmd != want {
		t.Errorf("cmd = %+v, want %+v", cmd, want)
	}
}

func TestParseCommand_Sell(t *testing.T) {
	cmd, _, err := ParseCommand("S 5 GOOG 4294967295 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Type != domain.CommandSell || cmd.Price != 4294967295 {
		t.Errorf("cmd = %+v, want sell at max uint32 price", cmd)
	}
}

func TestParseCommand_Cancel(t *testing.T) {
	cmd, _, err := ParseCommand("C 42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Command{Type: domain.CommandCancel, OrderID: 42}
	if cmd != want {
		t.Errorf("cmd = %+v, want %+v", cmd, want)
	}
}

func TestParseCommand_SkipsBlankAndComments(t *testing.T) {
	for _, line := range []string{"", "   ", "\t", "# a comment", "  # indented comment"} {
		_, skip, err := ParseCommand(line)
		if err != nil {
			t.Errorf("line %q: unexpected error: %v", line, err)
		}
		if !skip {
			t.Errorf("line %q: expected skip", line)
		}
	}
}

func TestParseCommand_LeadingWhitespaceTolerated(t *testing.T) {
	cmd, skip, err := ParseCommand("  B 1 AAA 10 5")
	if err != nil || skip {
		t.Fatalf("err=%v skip=%v, want parsed command", err, skip)
	}
	if cmd.OrderID != 1 {
		t.Errorf("order_id = %d, want 1", cmd.OrderID)
	}
}

func TestParseCommand_Malformed(t *testing.T) {
	lines := []string{
		"Z 1 AAA 10 5",          // unknown command
		"B 1 AAA 10",            // missing field
		"B 1 AAA 10 5 6",        // extra field
		"C",                     // cancel without id
		"C 1 2",                 // cancel with extra field
		"B x AAA 10 5",          // non-numeric id
		"B 1 AAA 0 5",           // zero price
		"B 1 AAA 10 0",          // zero quantity
		"B 1 TOOLONGSYM 10 5",   // symbol over 8 chars
		"B 4294967296 AAA 10 5", // id overflows uint32
		"B 1 AAA -10 5",         // negative price
	}
	for _, line := range lines {
		_, skip, err := ParseCommand(line)
		if skip {
			t.Errorf("line %q: unexpected skip", line)
			continue
		}
		if !errors.Is(err, ErrMalformedCommand) {
			t.Errorf("line %q: err = %v, want ErrMalformedCommand", line, err)
		}
	}
}

func TestFormatEvent_Added(t *testing.T) {
	got := FormatEvent(event.Event{
		Kind: event.KindAdded, Side: domain.SideBuy,
		OrderID: 123, Instrument: "AAPL", Price: 150, Quantity: 10, Timestamp: 777,
	})
	if got != "B 123 AAPL 150 10 777" {
		t.Errorf("got %q", got)
	}

	got = FormatEvent(event.Event{
		Kind: event.KindAdded, Side: domain.SideSell,
		OrderID: 9, Instrument: "X", Price: 1, Quantity: 2, Timestamp: 3,
	})
	if got != "S 9 X 1 2 3" {
		t.Errorf("got %q", got)
	}
}

func TestFormatEvent_Executed(t *testing.T) {
	got := FormatEvent(event.Event{
		Kind: event.KindExecuted, Instrument: "AAPL",
		RestingID: 1, IncomingID: 2, Price: 100, Quantity: 4, Timestamp: 55,
	})
	// Execution ID repeats the incoming order's ID.
	if got != "E 1 2 2 100 4 55" {
		t.Errorf("got %q", got)
	}
}

func TestFormatEvent_Deleted(t *testing.T) {
	got := FormatEvent(event.Event{
		Kind: event.KindDeleted, OrderID: 7, Accepted: true, Timestamp: 11,
	})
	if got != "X 7 A 11" {
		t.Errorf("got %q", got)
	}

	got = FormatEvent(event.Event{
		Kind: event.KindDeleted, OrderID: 8, Accepted: false, Timestamp: 12,
	})
	if got != "X 8 R 12" {
		t.Errorf("got %q", got)
	}
}

func TestParseCommand_RoundTripsFormat(t *testing.T) {
	// A parsed buy that rests unchanged renders back with the same
	// identity fields.
	cmd, _, err := ParseCommand("B 77 TICK 42 9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := FormatEvent(event.Event{
		Kind: event.KindAdded, Side: cmd.Side(), OrderID: cmd.OrderID,
		Instrument: cmd.Instrument, Price: cmd.Price, Quantity: cmd.Quantity,
		Timestamp: 1,
	})
	if got != "B 77 TICK 42 9 1" {
		t.Errorf("got %q", got)
	}
}
