/*
Package events provides the entity-scoped refresh notification bus.

PURPOSE:
  After a mutating operation succeeds, the presentation layer publishes
  a refresh event naming the entity whose rows changed, so list views
  can re-query. Delivery is fire-and-forget and at-most-once per call:
  a slow subscriber drops events instead of blocking the publisher.

  The core data operations know nothing about this package; publishing
  happens in the caller after it has observed success.
*/
package events

import (
	"sync"

	"github.com/magazzino/inventory-engine/inventory"
)

// Event names the entity whose rows changed.
type Event struct {
	Entity inventory.Entity `json:"entity"`
}

// Bus fans refresh events out to subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its channel plus a
// cancel function. The channel is buffered; events beyond the buffer
// are dropped for that subscriber.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish notifies every subscriber that the entity's rows changed.
// Never blocks.
func (b *Bus) Publish(entity inventory.Entity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- Event{Entity: entity}:
		default:
			// Subscriber is not keeping up; drop.
		}
	}
}
