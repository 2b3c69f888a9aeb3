package tracking

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// EventType discriminates the tracking event kinds pushed to subscribers.
type EventType string

const (
	// EventTypeLocationUpdate carries new driver coordinates. Broadcast only
	// for deliveries currently en_route.
	EventTypeLocationUpdate EventType = "LOCATION_UPDATE"
	// EventTypeStatusUpdate carries a new delivery status. Broadcast on every
	// successful state-machine transition.
	EventTypeStatusUpdate EventType = "STATUS_UPDATE"
)

// Event is the JSON-shaped envelope delivered to subscribers of an order.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// LocationUpdateData is the payload of a LOCATION_UPDATE event.
// Coordinates use [longitude, latitude] order, matching the REST wire format.
type LocationUpdateData struct {
	Coordinates [2]float64 `json:"coordinates"`
	DriverID    string     `json:"driverId"`
	Timestamp   int64      `json:"timestamp"`
}

// StatusUpdateData is the payload of a STATUS_UPDATE event.
type StatusUpdateData struct {
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// NewLocationUpdate builds a LOCATION_UPDATE event for a driver position.
func NewLocationUpdate(driverID kernel.UUID, position kernel.GeoPoint, at time.Time) Event {
	return Event{
		Type: EventTypeLocationUpdate,
		Data: LocationUpdateData{
			Coordinates: [2]float64{position.Lon(), position.Lat()},
			DriverID:    driverID.String(),
			Timestamp:   at.UnixMilli(),
		},
	}
}

// NewStatusUpdate builds a STATUS_UPDATE event for a delivery transition.
func NewStatusUpdate(orderID string, status string, at time.Time) Event {
	return Event{
		Type: EventTypeStatusUpdate,
		Data: StatusUpdateData{
			OrderID:   orderID,
			Status:    status,
			Timestamp: at.UnixMilli(),
		},
	}
}
