package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrAssignDriverCommandIsNotConstructed = errors.New(
		"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
	)
	ErrOrderIDIsRequired    = errors.New("orderId is required")
	ErrRadiusMustBePositive = errors.New("search radius must be greater than 0")
)

// AssignDriverCommand requests assignment of the nearest available driver to
// an order. The search is centered on the dropoff point; the radius comes
// from service configuration.
//
// Example:
//
//	dropoff, _ := kernel.NewGeoPoint(51.5072, -0.1276)
//	cmd, err := NewAssignDriverCommand("order-123", dropoff, 10000)
//	if err != nil {
//	    return fmt.Errorf("invalid assignment request: %w", err)
//	}
//
//	handler := NewAssignDriverCommandHandler(uowFactory, geoIndex, hub)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrNoDriverAvailable):
//	    // no candidate within the radius
//	case errors.Is(err, ErrDuplicateOrder):
//	    // the order already has a delivery
//	case err != nil:
//	    return err
//	}
type AssignDriverCommand struct { //nolint:recvcheck //using for validation
	deliveryID   kernel.UUID
	orderID      string
	dropoff      kernel.GeoPoint
	radiusMeters float64

	guard guard.ConstructorGuard
}

// NewAssignDriverCommand creates a command to assign a driver to an order.
// Automatically generates a unique ID for the delivery that assignment will
// create. Validates that orderID is not empty, the dropoff point is valid and
// the radius is positive.
func NewAssignDriverCommand(orderID string, dropoff kernel.GeoPoint, radiusMeters float64) (AssignDriverCommand, error) {
	command := AssignDriverCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDeliveryID(kernel.NewUUID()),
		command.setOrderID(orderID),
		command.setDropoff(dropoff),
		command.setRadiusMeters(radiusMeters),
	); err != nil {
		return AssignDriverCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignDriverCommandIsNotConstructed if validation fails.
func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}

// DeliveryID returns the generated delivery ID from the command.
func (c AssignDriverCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// OrderID returns the order identifier from the command.
func (c AssignDriverCommand) OrderID() string {
	return c.orderID
}

// Dropoff returns the delivery destination from the command.
func (c AssignDriverCommand) Dropoff() kernel.GeoPoint {
	return c.dropoff
}

// RadiusMeters returns the driver search radius from the command.
func (c AssignDriverCommand) RadiusMeters() float64 {
	return c.radiusMeters
}

func (c *AssignDriverCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *AssignDriverCommand) setOrderID(orderID string) error {
	if orderID == "" {
		return ErrOrderIDIsRequired
	}

	c.orderID = orderID
	return nil
}

func (c *AssignDriverCommand) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}

	c.dropoff = dropoff
	return nil
}

func (c *AssignDriverCommand) setRadiusMeters(radiusMeters float64) error {
	if radiusMeters <= 0 {
		return ErrRadiusMustBePositive
	}

	c.radiusMeters = radiusMeters
	return nil
}
