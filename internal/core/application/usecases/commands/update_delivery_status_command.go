package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDeliveryStatusCommandIsNotConstructed = errors.New(
	"UpdateDeliveryStatusCommand must be created via NewUpdateDeliveryStatusCommand constructor",
)

// UpdateDeliveryStatusCommand requests a delivery status transition for an
// order. The requested status is parsed from its wire string at construction,
// so an unknown status never reaches the handler.
type UpdateDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	orderID string
	status  delivery.Status

	guard guard.ConstructorGuard
}

// NewUpdateDeliveryStatusCommand creates a command to transition a delivery.
// Validates that orderID is not empty and the status string names a known
// status.
func NewUpdateDeliveryStatusCommand(orderID string, status string) (UpdateDeliveryStatusCommand, error) {
	command := UpdateDeliveryStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setStatus(status),
	); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateDeliveryStatusCommandIsNotConstructed if validation fails.
func (c UpdateDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryStatusCommandIsNotConstructed)
}

// OrderID returns the order identifier from the command.
func (c UpdateDeliveryStatusCommand) OrderID() string {
	return c.orderID
}

// Status returns the requested status from the command.
func (c UpdateDeliveryStatusCommand) Status() delivery.Status {
	return c.status
}

func (c *UpdateDeliveryStatusCommand) setOrderID(orderID string) error {
	if orderID == "" {
		return ErrOrderIDIsRequired
	}

	c.orderID = orderID
	return nil
}

func (c *UpdateDeliveryStatusCommand) setStatus(status string) error {
	parsed, err := delivery.StatusFromString(status)
	if err != nil {
		return err
	}

	c.status = parsed
	return nil
}
