package service

import (
	"sync"

	"github.com/layer-3/walletlink/core"
	"github.com/rs/zerolog"
)

// Listener receives lifecycle events.
type Listener func(core.Event)

// SubscriptionID identifies a registered listener.
type SubscriptionID uint64

type subscription struct {
	id       SubscriptionID
	listener Listener
}

// EventBus delivers events synchronously to listeners in subscription
// order. A panicking listener does not affect the others or the publisher.
type EventBus struct {
	mu     sync.Mutex
	nextID SubscriptionID
	subs   []subscription
	logger zerolog.Logger
}

// NewEventBus creates an empty bus
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{logger: logger}
}

// Subscribe registers l and returns its id.
func (b *EventBus) Subscribe(l Listener) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, listener: l})
	return b.nextID
}

// Unsubscribe removes a listener. Unknown ids are ignored.
func (b *EventBus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			// copy so snapshots held by an in-flight Publish stay intact
			subs := make([]subscription, 0, len(b.subs)-1)
			subs = append(subs, b.subs[:i]...)
			b.subs = append(subs, b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every listener registered when the call starts.
func (b *EventBus) Publish(event core.Event) {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(s, event)
	}
}

// Len returns the number of listeners.
func (b *EventBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *EventBus) deliver(s subscription, event core.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("kind", string(event.Kind)).
				Uint64("subscription", uint64(s.id)).
				Msg("event listener panicked")
		}
	}()
	s.listener(event)
}
