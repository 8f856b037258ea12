package types

import "sync"

// Bus fans events out to subscribers. It plays the role of document-level
// event dispatch: components emit into it and any number of listeners react.
// Subscribers are called in the order they subscribed.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id        int
	eventType UIEventType
	all       bool
	handler   EventEmitter
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for a single event type.
// The returned function removes the subscription; calling it twice is harmless.
func (b *Bus) Subscribe(eventType UIEventType, handler EventEmitter) func() {
	return b.add(subscription{eventType: eventType, handler: handler})
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler EventEmitter) func() {
	return b.add(subscription{all: true, handler: handler})
}

func (b *Bus) add(s subscription) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	s.id = b.nextID
	b.nextID++
	b.subs = append(b.subs, s)

	return func() { b.remove(s.id) }
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers event to its subscribers. Handlers run synchronously on the
// caller's goroutine, outside the bus lock, so they may emit further events.
func (b *Bus) Emit(event *UIEvent) {
	if event == nil {
		return
	}

	b.mu.RLock()
	targets := make([]EventEmitter, 0, len(b.subs))
	for _, s := range b.subs {
		if s.all || s.eventType == event.Type {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h(event)
	}
}
