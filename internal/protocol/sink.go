package protocol

import (
	"io"
	"sync"

	"github.com/tickerlab/matchd/internal/event"
)

// LineSink writes events to w in wire format, one line per event. The
// mutex serializes the many instrument workers appending concurrently;
// ordering across instruments is whatever order writers acquire it.
type LineSink struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewLineSink creates a LineSink writing to w.
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

// Publish renders ev and writes it as a single line. Write errors are
// dropped: the event stream is fire-and-forget output, and a broken
// egress must not disturb matching.
func (s *LineSink) Publish(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = AppendEvent(s.buf[:0], ev)
	s.buf = append(s.buf, '\n')
	_, _ = s.w.Write(s.buf)
}
