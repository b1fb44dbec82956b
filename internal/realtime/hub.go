package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	EventBookingUpdated = "booking_updated"

	ActionCreate = "create"
	ActionUpdate = "update"
)

// defaultBufferSize is how many events a subscriber may lag behind before
// events are dropped for it.
const defaultBufferSize = 16

// Event is the payload pushed to every connected observer whenever a booking
// changes.
type Event struct {
	Event   string `json:"event"`
	Action  string `json:"action"`
	Surgery any    `json:"surgery"`
}

// Hub fans booking events out to subscribers. Delivery is best effort: a
// subscriber whose buffer is full misses the event, it never blocks the
// broadcaster or the other subscribers.
type Hub struct {
	mu         sync.RWMutex
	observers  map[string]chan Event
	bufferSize int
}

func NewHub() *Hub {
	return &Hub{
		observers:  make(map[string]chan Event),
		bufferSize: defaultBufferSize,
	}
}

// Subscribe registers a new observer and returns its id together with the
// channel events arrive on. The channel is closed on Unsubscribe.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	events := make(chan Event, h.bufferSize)

	h.mu.Lock()
	h.observers[id] = events
	h.mu.Unlock()

	log.Info().Str("observer", id).Msg("realtime observer subscribed")

	return id, events
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	events, ok := h.observers[id]
	if ok {
		delete(h.observers, id)
		close(events)
	}
	h.mu.Unlock()

	if ok {
		log.Info().Str("observer", id).Msg("realtime observer unsubscribed")
	}
}

// Broadcast delivers the event to every observer that has buffer room.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, events := range h.observers {
		select {
		case events <- event:
		default:
			log.Warn().Str("observer", id).Str("action", event.Action).Msg("observer buffer full, dropping event")
		}
	}
}

// ObserverCount reports the number of connected observers.
func (h *Hub) ObserverCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.observers)
}
