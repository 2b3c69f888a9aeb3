// Package tracking implements the real-time fan-out hub for delivery
// tracking. Subscribers join a per-order room and receive location and
// status events for that order only. Delivery is best effort: a failing
// subscriber is skipped and logged, never blocking the rest of the room.
package tracking

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Subscriber receives events for one order. Implementations must be safe for
// concurrent Send calls; a returned error marks this delivery as failed but
// does not evict the subscriber (the transport layer unsubscribes on
// disconnect).
type Subscriber interface {
	Send(event Event) error
}

// room holds the subscribers of one order. Rooms lock independently so
// broadcasts for different orders never serialize on each other.
type room struct {
	mu          sync.Mutex
	closed      bool
	subscribers map[Subscriber]struct{}
}

func newRoom() *room {
	return &room{subscribers: make(map[Subscriber]struct{})}
}

// Hub routes tracking events to per-order subscriber rooms.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	logger *slog.Logger

	broadcastsTotal   prometheus.Counter
	activeSubscribers prometheus.Gauge
}

// NewHub creates an empty hub. The collectors are incremented on event
// delivery and subscriber churn; pass fresh ones in tests.
func NewHub(logger *slog.Logger, broadcastsTotal prometheus.Counter, activeSubscribers prometheus.Gauge) *Hub {
	return &Hub{
		rooms:             make(map[string]*room),
		logger:            logger,
		broadcastsTotal:   broadcastsTotal,
		activeSubscribers: activeSubscribers,
	}
}

// Register ensures a room exists for the order. Called when a delivery is
// assigned so subscribers arriving before the first event find the room.
func (h *Hub) Register(orderID string) {
	h.getOrCreateRoom(orderID)
}

// Subscribe adds a subscriber to the order's room, creating it on demand.
func (h *Hub) Subscribe(orderID string, subscriber Subscriber) {
	for {
		r := h.getOrCreateRoom(orderID)

		r.mu.Lock()
		if r.closed {
			// Lost a race with empty-room removal, take a fresh room.
			r.mu.Unlock()
			continue
		}
		if _, exists := r.subscribers[subscriber]; !exists {
			r.subscribers[subscriber] = struct{}{}
			h.activeSubscribers.Inc()
		}
		r.mu.Unlock()
		return
	}
}

// Unsubscribe removes a subscriber from the order's room. The room itself is
// removed once its last subscriber leaves, so finished orders do not leak.
func (h *Hub) Unsubscribe(orderID string, subscriber Subscriber) {
	h.mu.RLock()
	r, ok := h.rooms[orderID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	if _, exists := r.subscribers[subscriber]; exists {
		delete(r.subscribers, subscriber)
		h.activeSubscribers.Dec()
	}
	empty := len(r.subscribers) == 0
	r.mu.Unlock()

	if empty {
		h.removeRoomIfEmpty(orderID, r)
	}
}

// Broadcast delivers the event to every subscriber of the order and reports
// how many deliveries succeeded. Unknown orders are a no-op.
func (h *Hub) Broadcast(orderID string, event Event) int {
	h.mu.RLock()
	r, ok := h.rooms[orderID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	r.mu.Lock()
	targets := make([]Subscriber, 0, len(r.subscribers))
	for subscriber := range r.subscribers {
		targets = append(targets, subscriber)
	}
	r.mu.Unlock()

	// Sends happen outside the room lock so one slow subscriber cannot stall
	// subscribe/unsubscribe on the same order.
	delivered := 0
	for _, subscriber := range targets {
		if err := subscriber.Send(event); err != nil {
			h.logger.Debug("tracking event delivery failed",
				slog.String("orderId", orderID),
				slog.String("eventType", string(event.Type)),
				slog.Any("error", err))
			continue
		}
		delivered++
		h.broadcastsTotal.Inc()
	}
	return delivered
}

// SubscriberCount reports the current subscriber count of an order's room.
func (h *Hub) SubscriberCount(orderID string) int {
	h.mu.RLock()
	r, ok := h.rooms[orderID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}

// RoomCount reports the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) getOrCreateRoom(orderID string) *room {
	h.mu.RLock()
	r, ok := h.rooms[orderID]
	h.mu.RUnlock()
	if ok {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[orderID]; ok {
		return r
	}
	r = newRoom()
	h.rooms[orderID] = r
	return r
}

func (h *Hub) removeRoomIfEmpty(orderID string, r *room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.rooms[orderID]
	if !ok || current != r {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.subscribers) == 0 {
		r.closed = true
		delete(h.rooms, orderID)
	}
}
