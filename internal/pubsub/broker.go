package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

type subscription[T any] struct {
	ch    chan Event[T]
	types map[EventType]struct{} // nil accepts every type
}

func (s subscription[T]) accepts(t EventType) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Broker delivers each published event to every matching subscriber.
// Slow subscribers lose events rather than block the publisher.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]subscription[T]
	done       chan struct{}
	bufferSize int
	now        func() time.Time
}

// NewBroker creates a broker with a per-subscriber buffer of 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with a custom per-subscriber buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[chan Event[T]]subscription[T]),
		done:       make(chan struct{}),
		bufferSize: size,
		now:        time.Now,
	}
}

// Subscribe returns a channel receiving every event. It is closed when ctx is
// cancelled or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	return b.subscribe(ctx, nil)
}

// SubscribeTypes is like Subscribe but only delivers the listed event types.
func (b *Broker[T]) SubscribeTypes(ctx context.Context, types ...EventType) <-chan Event[T] {
	filter := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		filter[t] = struct{}{}
	}
	return b.subscribe(ctx, filter)
}

func (b *Broker[T]) subscribe(ctx context.Context, filter map[EventType]struct{}) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	ch := make(chan Event[T], b.bufferSize)
	b.subs[ch] = subscription[T]{ch: ch, types: filter}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.closed() {
			return
		}
		delete(b.subs, ch)
		close(ch)
	}()

	return ch
}

// Publish sends an event to all matching subscribers.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.PublishCount(eventType, payload)
}

// PublishCount is Publish that reports the number of deliveries.
func (b *Broker[T]) PublishCount(eventType EventType, payload T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed() {
		return 0
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: b.now(),
	}

	delivered := 0
	for _, sub := range b.subs {
		if !sub.accepts(eventType) {
			continue
		}
		select {
		case sub.ch <- event:
			delivered++
		default:
			// full, drop
		}
	}
	return delivered
}

// Close shuts down the broker and closes every subscriber channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return
	}
	close(b.done)
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// closed must be called with mu held.
func (b *Broker[T]) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
