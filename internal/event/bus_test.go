package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestBus_PublishToSpecificThenWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(ctx context.Context, e Event) { order = append(order, "all") })
	bus.Subscribe("meeting.started", func(ctx context.Context, e Event) { order = append(order, "specific") })
	bus.Subscribe("meeting.ended", func(ctx context.Context, e Event) { order = append(order, "other") })

	require.NoError(t, bus.Publish(context.Background(), NewBase("meeting.started", testTime)))
	require.Equal(t, []string{"specific", "all"}, order)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	id := bus.Subscribe("meeting.started", func(ctx context.Context, e Event) { calls++ })
	require.Equal(t, 1, bus.SubscriptionCount())

	require.True(t, bus.Unsubscribe(id))
	require.False(t, bus.Unsubscribe(id))
	require.Equal(t, 0, bus.SubscriptionCount())

	require.NoError(t, bus.Publish(context.Background(), NewBase("meeting.started", testTime)))
	require.Zero(t, calls)
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(nil)

	delivered := false
	bus.Subscribe("meeting.ended", func(ctx context.Context, e Event) { panic("boom") })
	bus.Subscribe("meeting.ended", func(ctx context.Context, e Event) { delivered = true })

	require.NoError(t, bus.Publish(context.Background(), NewBase("meeting.ended", testTime)))
	require.True(t, delivered)
}

func TestBus_PublishWithCanceledContext(t *testing.T) {
	bus := NewBus(nil)
	bus.SubscribeAll(func(ctx context.Context, e Event) { t.Error("handler ran after cancel") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, NewBase("meeting.started", testTime))
	require.ErrorIs(t, err, context.Canceled)
	require.EqualError(t, err, "context canceled", "callers add the event type themselves")
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(ctx context.Context, e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), NewBase("meeting.started", testTime))
		}()
	}
	wg.Wait()
	require.Equal(t, 20, count)
}

func TestBase(t *testing.T) {
	b := NewBase("meeting.check_postponed", testTime)
	require.Equal(t, "meeting.check_postponed", b.EventType())
	require.Equal(t, testTime, b.Timestamp())
}
