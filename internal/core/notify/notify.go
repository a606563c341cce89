// Package notify provides in-process change notifications.
package notify

import "sync"

// Event names a kind of change. Events carry no payload beyond the fact
// that something changed.
type Event string

const (
	HistoryChanged  Event = "history-changed"
	WishlistChanged Event = "wishlist-changed"
	PackagesChanged Event = "packages-changed"
)

// Notifier publishes change events.
type Notifier interface {
	Publish(ev Event)
}

// Bus is a Notifier that fans events out to registered observers.
// Delivery order across observers is unspecified.
type Bus struct {
	mu        sync.RWMutex
	next      int
	observers map[Event]map[int]func(Event)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{observers: make(map[Event]map[int]func(Event))}
}

// Subscribe registers fn for ev and returns a function that removes it.
func (b *Bus) Subscribe(ev Event, fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	if b.observers[ev] == nil {
		b.observers[ev] = make(map[int]func(Event))
	}
	b.observers[ev][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers[ev], id)
	}
}

// Publish calls every observer of ev. Observers run on the caller's
// goroutine after the bus lock is released, so an observer may
// subscribe or unsubscribe.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.observers[ev]))
	for _, fn := range b.observers[ev] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Discard is a Notifier that drops every event.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Publish(Event) {}
