package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// subscriberBuffer bounds each subscriber's queue. Events for a subscriber
// that falls further behind are dropped.
const subscriberBuffer = 32

// Bus fans events out to subscribers without blocking the emitter.
type Bus struct {
	log zerolog.Logger

	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBus creates an event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		log:  log.With().Str("component", "events").Logger(),
		subs: make(map[int]chan Event),
	}
}

// Subscribe returns a channel of events and a function that cancels the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Emit publishes an event to every subscriber.
func (b *Bus) Emit(eventType EventType, module string, data map[string]any) {
	event := Event{Type: eventType, Timestamp: time.Now(), Module: module, Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Warn().Int("subscriber", id).Str("event_type", string(eventType)).Msg("Subscriber is behind, event dropped")
		}
	}
	b.log.Debug().Str("event_type", string(eventType)).Str("module", module).Int("subscribers", len(b.subs)).Msg("Event emitted")
}

// EmitError publishes an ErrorOccurred event.
func (b *Bus) EmitError(module string, err error, context map[string]any) {
	data := map[string]any{"error": err.Error()}
	for k, v := range context {
		data[k] = v
	}
	b.Emit(ErrorOccurred, module, data)
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later emits are ignored.
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
