package server

import (
	"sync"

	"github.com/grovetools/fsevents/pkg/watch"
)

const subscriberBuffer = 64

// Bus fans watcher events out to any number of subscribers. Slow
// subscribers lose events rather than stalling the publisher.
type Bus struct {
	mu     sync.Mutex
	subs   map[chan watch.Event]struct{}
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan watch.Event]struct{})}
}

// Subscribe registers a new subscriber. The cancel function removes the
// subscription and closes its channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan watch.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan watch.Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (b *Bus) Publish(ev watch.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
