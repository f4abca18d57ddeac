// Package events implements the in-process event bus the core publishes
// state changes on. Subscribers receive events over buffered channels; a
// slow subscriber drops events rather than blocking publishers.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

const subscriberBuffer = 64

// Bus fans events out to subscribers. The zero value is not usable; use NewBus.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan domain.Event
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan domain.Event)}
}

// Subscribe registers an observer and returns its channel plus a cancel
// function. The channel is closed on cancel or bus close.
func (b *Bus) Subscribe() (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan domain.Event)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan domain.Event, subscriberBuffer)
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

// Publish delivers the event to every subscriber without blocking. Events
// to full subscriber buffers are dropped.
func (b *Bus) Publish(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			slog.Debug("Event dropped for slow subscriber", "type", event.Type)
		}
	}
}

// Close closes all subscriber channels. Further publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
