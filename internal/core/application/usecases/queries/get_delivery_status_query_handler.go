package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// GetDeliveryStatusQueryHandler answers delivery status lookups with a direct
// SQL join of deliveries and drivers, bypassing the aggregates on the read
// path.
type GetDeliveryStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryStatusQueryHandler creates a handler for delivery status
// queries. Requires a GORM database connection for query execution.
func NewGetDeliveryStatusQueryHandler(db *gorm.DB) GetDeliveryStatusQueryHandler {
	return GetDeliveryStatusQueryHandler{db: db}
}

// Handle executes the status lookup for one order.
// Returns an error wrapping errs.ErrObjectNotFound when the order has no
// delivery.
func (h GetDeliveryStatusQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryStatusQuery,
) (GetDeliveryStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			d.status,
			dr.id,
			dr.location_lat,
			dr.location_lon
		FROM deliveries d
		JOIN drivers dr ON dr.id = d.driver_id
		WHERE d.order_id = ?
	`, query.OrderID()).Row()

	var (
		statusValue string
		driverID    uuid.UUID
		lat, lon    float64
	)

	err := row.Scan(&statusValue, &driverID, &lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDeliveryStatusQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
	}
	if err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	status, err := delivery.StatusFromString(statusValue)
	if err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	id, err := kernel.UUIDFromBytes(driverID[:])
	if err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	location, err := kernel.NewGeoPoint(lat, lon)
	if err != nil {
		return GetDeliveryStatusQueryResponse{}, err
	}

	return GetDeliveryStatusQueryResponse{
		OrderID:        query.OrderID(),
		Status:         status,
		DriverID:       id,
		DriverLocation: location,
	}, nil
}
