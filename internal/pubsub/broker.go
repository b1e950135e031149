// Package pubsub provides a small generic publish/subscribe broker.
// The engine itself is synchronous; the broker only fans out ambient
// events (log entries, commit notifications) to interested listeners
// such as the CLI's debug stream.
package pubsub

import (
	"context"
	"sync"
	"time"
)

// EventType classifies a published event.
type EventType string

const (
	// LoadedEvent fires when an object is hydrated from the wire.
	LoadedEvent EventType = "loaded"
	// CommittedEvent fires after a successful commit.
	CommittedEvent EventType = "committed"
	// EntryEvent carries one log entry.
	EntryEvent EventType = "entry"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type    EventType
	Payload T
	At      time.Time
}

const subscriberBuffer = 64

// Broker fans events out to subscribers. Publishing never blocks: a
// subscriber that falls behind loses events, counted in Dropped.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[chan Event[T]]struct{}
	closed  bool
	dropped int
}

// NewBroker creates an open broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[chan Event[T]]struct{})}
}

// Subscribe registers a listener. The returned channel closes when ctx
// is cancelled or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}()
	return ch
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broker[T]) Publish(t EventType, payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	ev := Event[T]{Type: t, Payload: payload, At: time.Now()}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped++
		}
	}
}

// Close shuts the broker down and closes all subscriber channels.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// Subscribers returns the number of live subscriptions.
func (b *Broker[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
