package http

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
)

var errBadCoordinates = errors.New("coordinates must be a [lon, lat] pair")

// Coordinates is the wire representation of a position: a [lon, lat] array in
// GeoJSON axis order.
type Coordinates []float64

func (c Coordinates) toGeoPoint() (kernel.GeoPoint, error) {
	if len(c) != 2 {
		return kernel.GeoPoint{}, errBadCoordinates
	}
	return kernel.NewGeoPoint(c[1], c[0])
}

func coordinatesFrom(point kernel.GeoPoint) Coordinates {
	return Coordinates{point.Lon(), point.Lat()}
}

// Error is the JSON error envelope returned by every endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AssignRequest is the body of POST /api/delivery/assign.
type AssignRequest struct {
	OrderID string      `json:"orderId"`
	Dropoff Coordinates `json:"dropoff"`
}

// DriverResponse describes a driver in API responses.
type DriverResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Available bool        `json:"available"`
	Location  Coordinates `json:"location"`
}

// AssignResponse is the body of a successful assignment.
type AssignResponse struct {
	DeliveryID string         `json:"deliveryId"`
	OrderID    string         `json:"orderId"`
	Status     string         `json:"status"`
	Driver     DriverResponse `json:"driver"`
}

// CreateDriverRequest is the body of POST /api/delivery/drivers.
type CreateDriverRequest struct {
	Name     string      `json:"name"`
	Location Coordinates `json:"location"`
}

// LocationUpdateRequest is the body of the driver location and ping routes.
type LocationUpdateRequest struct {
	Coordinates Coordinates `json:"coordinates"`
}

// StatusUpdateRequest is the body of PUT /api/delivery/status/:orderId.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// StatusResponse is the body of GET /api/delivery/status/:orderId.
type StatusResponse struct {
	OrderID        string      `json:"orderId"`
	Status         string      `json:"status"`
	DriverID       string      `json:"driverId"`
	DriverLocation Coordinates `json:"driverLocation"`
}
