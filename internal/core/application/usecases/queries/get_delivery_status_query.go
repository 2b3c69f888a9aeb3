// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetDeliveryStatusQueryIsNotConstructed = errors.New(
		"GetDeliveryStatusQuery must be created via NewGetDeliveryStatusQuery constructor",
	)
	ErrOrderIDIsRequired = errors.New("orderId is required")
)

// GetDeliveryStatusQuery retrieves the current status and driver position of
// the delivery bound to an order.
//
// Example:
//
//	query, err := NewGetDeliveryStatusQuery("order-123")
//	if err != nil {
//	    return err
//	}
//
//	handler := NewGetDeliveryStatusQueryHandler(db)
//	status, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // no delivery for this order
//	}
type GetDeliveryStatusQuery struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

// NewGetDeliveryStatusQuery creates a query for one order's delivery status.
// Validates that orderID is not empty.
func NewGetDeliveryStatusQuery(orderID string) (GetDeliveryStatusQuery, error) {
	query := GetDeliveryStatusQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setOrderID(orderID); err != nil {
		return GetDeliveryStatusQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetDeliveryStatusQueryIsNotConstructed if validation fails.
func (q GetDeliveryStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryStatusQueryIsNotConstructed)
}

// OrderID returns the order identifier from the query.
func (q GetDeliveryStatusQuery) OrderID() string {
	return q.orderID
}

func (q *GetDeliveryStatusQuery) setOrderID(orderID string) error {
	if orderID == "" {
		return ErrOrderIDIsRequired
	}

	q.orderID = orderID
	return nil
}

// GetDeliveryStatusQueryResponse is the read model of one order's delivery:
// its lifecycle status plus the assigned driver's identity and last known
// position.
type GetDeliveryStatusQueryResponse struct {
	OrderID        string
	Status         delivery.Status
	DriverID       kernel.UUID
	DriverLocation kernel.GeoPoint
}
