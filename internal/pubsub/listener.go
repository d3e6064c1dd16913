package pubsub

import "context"

// Listener wraps a subscription for callers that pull events one at a time.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to broker for the lifetime of ctx.
func NewListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *Listener[T] {
	var ch <-chan Event[T]
	if len(types) > 0 {
		ch = broker.SubscribeTypes(ctx, types...)
	} else {
		ch = broker.Subscribe(ctx)
	}
	return &Listener[T]{ctx: ctx, ch: ch}
}

// Next blocks until an event arrives. It returns false once the context is
// cancelled or the broker is closed.
func (l *Listener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		return event, ok
	}
}
