package event

import "sync"

// Sink is an append-only destination for events. Implementations must
// be safe for concurrent use: many instrument workers publish to the
// same sink. Event order across instruments is whatever order writers
// reach the sink and carries no causal meaning.
type Sink interface {
	Publish(ev Event)
}

// MultiSink fans each event out to several sinks in order.
type MultiSink []Sink

// Publish sends ev to every wrapped sink.
func (m MultiSink) Publish(ev Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}

// MemorySink records events in memory. Used in tests and anywhere a
// bounded in-process capture of the event stream is needed.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Publish appends ev to the captured stream.
func (s *MemorySink) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of all captured events in publish order.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Reset discards all captured events.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}
