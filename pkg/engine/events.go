package engine

import (
	"sync"
	"time"

	"github.com/dshills/gonodes/pkg/domain/types"
)

// EventType categorizes engine events.
type EventType string

const (
	// EventTickStarted is emitted when a tick begins.
	EventTickStarted EventType = "tick.started"
	// EventTickPaused is emitted when a tick suspends at a debug pause.
	EventTickPaused EventType = "tick.paused"
	// EventTickCompleted is emitted when a tick finishes the whole order.
	EventTickCompleted EventType = "tick.completed"
	// EventNodeCompleted is emitted after each node completes.
	EventNodeCompleted EventType = "node.completed"
	// EventNodeSkipped is emitted when a node without a type or behavior
	// is passed over.
	EventNodeSkipped EventType = "node.skipped"
)

// Event is a status notification for debugger/UI tooling. Events are a
// readback channel only; the engine never blocks on a slow subscriber.
type Event struct {
	Type      EventType
	Timestamp time.Time
	GraphID   types.GraphID
	TickID    types.TickID
	NodeID    types.NodeID
	Message   string
}

// Monitor fans engine events out to subscribers. Subscribing and
// receiving are safe from other goroutines; emission happens on the
// engine's evaluating goroutine.
type Monitor struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewMonitor creates an event monitor with no subscribers.
func NewMonitor() *Monitor {
	return &Monitor{subs: make(map[int]chan Event)}
}

// Subscribe registers a buffered event channel and returns it with an
// unsubscribe function. Events that arrive while the buffer is full are
// dropped for that subscriber.
func (m *Monitor) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 16
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Event, buffer)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
}

// Emit delivers an event to all subscribers without blocking.
func (m *Monitor) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default: // subscriber is behind, drop
		}
	}
}

// Close closes all subscriber channels.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}
