package event

import (
	"context"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

const wildcard = "*"

// Handler receives a published event.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous pub-sub bus. Handlers run on the publisher's
// goroutine, specific subscribers before wildcard ones, each group in
// registration order.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription
	nextID        atomic.Uint64
	logger        *slog.Logger
}

// NewBus creates an empty bus. A nil logger discards handler panics.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		subscriptions: make(map[string][]subscription),
		logger:        logger,
	}
}

// Subscribe registers handler for eventType and returns a subscription id.
func (b *Bus) Subscribe(eventType string, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID.Add(1)
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) uint64 {
	return b.Subscribe(wildcard, handler)
}

// Unsubscribe removes a subscription. It reports whether id was registered.
func (b *Bus) Unsubscribe(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				b.subscriptions[eventType] = append(subs[:i:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish dispatches e to its subscribers. A panicking handler is logged and
// skipped. Publish fails only when ctx is already done, in which case no
// handler runs.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	specific := append([]subscription(nil), b.subscriptions[e.EventType()]...)
	all := append([]subscription(nil), b.subscriptions[wildcard]...)
	b.mu.RUnlock()

	for _, sub := range specific {
		b.safeCall(ctx, sub.handler, e)
	}
	for _, sub := range all {
		b.safeCall(ctx, sub.handler, e)
	}
	return nil
}

func (b *Bus) safeCall(ctx context.Context, handler Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", e.EventType(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	handler(ctx, e)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
