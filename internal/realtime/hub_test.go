package realtime_test

import (
	"testing"
	"time"

	"otms/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub := realtime.NewHub()

	id, events := hub.Subscribe()
	defer hub.Unsubscribe(id)

	assert.Equal(t, 1, hub.ObserverCount())

	hub.Broadcast(realtime.Event{
		Event:   realtime.EventBookingUpdated,
		Action:  realtime.ActionCreate,
		Surgery: map[string]string{"id": "surgery-1"},
	})

	select {
	case event := <-events:
		assert.Equal(t, realtime.EventBookingUpdated, event.Event)
		assert.Equal(t, realtime.ActionCreate, event.Action)
	case <-time.After(time.Second):
		t.Fatal("expected event to be delivered")
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := realtime.NewHub()

	id, events := hub.Subscribe()
	hub.Unsubscribe(id)

	assert.Equal(t, 0, hub.ObserverCount())

	_, open := <-events
	assert.False(t, open, "expected channel to be closed after unsubscribe")

	// Unsubscribing twice must be a no-op.
	require.NotPanics(t, func() { hub.Unsubscribe(id) })
}

func TestHub_SlowObserverDoesNotBlockOthers(t *testing.T) {
	hub := realtime.NewHub()

	slowID, _ := hub.Subscribe()
	defer hub.Unsubscribe(slowID)

	fastID, fastEvents := hub.Subscribe()
	defer hub.Unsubscribe(fastID)

	// Drain the fast observer continuously. Nothing reads the slow channel,
	// so its buffer fills and later events are dropped for it.
	received := make(chan int, 1)

	go func() {
		count := 0
		for range fastEvents {
			count++
		}

		received <- count
	}()

	done := make(chan struct{})

	go func() {
		defer close(done)

		for range 100 {
			hub.Broadcast(realtime.Event{Event: realtime.EventBookingUpdated, Action: realtime.ActionUpdate})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcaster stalled on a slow observer")
	}

	hub.Unsubscribe(fastID)

	select {
	case count := <-received:
		assert.Positive(t, count, "fast observer should have received events")
	case <-time.After(time.Second):
		t.Fatal("fast observer never finished draining")
	}
}

func TestHub_BroadcastWithoutObservers(t *testing.T) {
	hub := realtime.NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast(realtime.Event{Event: realtime.EventBookingUpdated, Action: realtime.ActionCreate})
	})
}
