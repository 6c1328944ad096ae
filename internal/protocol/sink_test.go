package protocol

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/event"
)

// syncBuffer serializes writes so the test can publish concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLineSink_WritesOneLinePerEvent(t *testing.T) {
	var buf syncBuffer
	sink := NewLineSink(&buf)

	sink.Publish(event.Event{
		Kind: event.KindAdded, Side: domain.SideBuy,
		OrderID: 1, Instrument: "AAA", Price: 100, Quantity: 10, Timestamp: 5,
	})
	sink.Publish(event.Event{
		Kind: event.KindDeleted, OrderID: 1, Accepted: true, Timestamp: 6,
	})

	want := "B 1 AAA 100 10 5\nX 1 A 6\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLineSink_ConcurrentPublishersProduceWholeLines(t *testing.T) {
	var buf syncBuffer
	sink := NewLineSink(&buf)

	const goroutines = 8
	const perGoroutine = 50
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				sink.Publish(event.Event{
					Kind: event.KindDeleted, OrderID: uint32(g), Accepted: false, Timestamp: int64(i),
				})
			}
		}(g)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != goroutines*perGoroutine {
		t.Fatalf("got %d lines, want %d", len(lines), goroutines*perGoroutine)
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "X ") || !strings.Contains(line, " R ") {
			t.Fatalf("interleaved or malformed line: %q", line)
		}
	}
}
