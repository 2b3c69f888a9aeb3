package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrDuplicateDelivery is returned by Add when a delivery already exists for
// the same orderId. The unique index on orderId is the idempotency guard for
// "one delivery per order".
var ErrDuplicateDelivery = errors.New("delivery already exists for order")

// DeliveryRepository defines the persistence contract for delivery
// aggregates. Deliveries are never deleted; terminal records stay in place.
type DeliveryRepository interface {
	// Add persists a new delivery aggregate to storage. Returns an error
	// wrapping ErrDuplicateDelivery when the orderId is already taken.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetByOrderID retrieves the delivery bound to an order.
	// Returns an error wrapping errs.ErrObjectNotFound when absent.
	GetByOrderID(ctx context.Context, orderID string) (*delivery.Delivery, error)

	// GetEnRouteByDriver retrieves the deliveries of one driver currently in
	// EnRoute status. Used to fan out location updates to their subscribers.
	GetEnRouteByDriver(ctx context.Context, driverID kernel.UUID) ([]*delivery.Delivery, error)
}
