// Package bus fans out state-change events from the session engine to its
// consumers: the synchronous refresh hook (the latest-assignment snapshot),
// the websocket broadcaster and the chat-notification publisher.  Sinks are
// independent: one failing or hanging never blocks another and never fails
// the ledger operation that produced the event.
package bus

import (
	"log"
	"sync"
)

// Kind labels what mutated.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindImport      Kind = "import"
	KindReset       Kind = "reset"
)

// Event describes one successful session mutation.  Latest carries the new
// latest-assignment string when it changed, "" otherwise (imports restore
// history without touching the live banner).
type Event struct {
	Kind        Kind
	ShowID      string
	BidderID    string
	DisplayName string
	Bin         int
	Latest      string
}

// Sink receives events asynchronously.  Deliver may block or fail; the bus
// isolates both.
type Sink interface {
	Name() string
	Deliver(Event) error
}

// sinkQueueSize bounds how far a slow sink may fall behind before events
// are dropped for it.
const sinkQueueSize = 64

// worker is one sink plus its delivery queue.  A single goroutine drains
// the queue, so each sink sees events in exactly the order they were
// published; two sales broadcast in reverse would leave the overlay
// showing the older assignment.  Events for different sinks still flow
// independently.
type worker struct {
	sink Sink
	ch   chan Event
}

// Bus delivers each published event to the refresh hook synchronously and
// queues it for every attached sink.  A sink failure is logged once per
// sink per session and then suppressed so a dead chat endpoint does not
// spam the operator on every sale.
type Bus struct {
	refresh func(Event)

	mu      sync.Mutex
	workers []*worker
	warned  map[string]bool
}

// New creates a bus.  refresh may be nil.
func New(refresh func(Event)) *Bus {
	return &Bus{refresh: refresh, warned: make(map[string]bool)}
}

// Attach registers a sink and starts its delivery goroutine.  Not safe to
// call concurrently with Publish; wire everything up before the server
// starts.
func (b *Bus) Attach(s Sink) {
	w := &worker{sink: s, ch: make(chan Event, sinkQueueSize)}
	b.workers = append(b.workers, w)
	go b.drain(w)
}

// Publish runs the refresh hook inline, then enqueues the event for every
// sink.  A sink whose queue is full loses the event rather than stalling
// the ledger.
func (b *Bus) Publish(ev Event) {
	if b.refresh != nil {
		b.refresh(ev)
	}
	for _, w := range b.workers {
		select {
		case w.ch <- ev:
		default:
			b.warnOnce(w.sink.Name(), "overflow", "delivery queue full, event dropped")
		}
	}
}

// drain delivers queued events one at a time, which is what keeps
// per-sink delivery in publication order.
func (b *Bus) drain(w *worker) {
	for ev := range w.ch {
		b.deliver(w.sink, ev)
	}
}

func (b *Bus) deliver(s Sink, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.warnOnce(s.Name(), "panic", r)
		}
	}()
	if err := s.Deliver(ev); err != nil {
		b.warnOnce(s.Name(), "error", err)
	}
}

func (b *Bus) warnOnce(name, class string, detail any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := name + "/" + class
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	log.Printf("bus: %s sink %s: %v (further failures suppressed this session)", name, class, detail)
}

// ResetWarnings clears the suppression map.  Called when a new show starts
// so a still-broken sink is reported once per show, not once per process.
func (b *Bus) ResetWarnings() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warned = make(map[string]bool)
}
