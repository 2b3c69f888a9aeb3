package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverLocationCommandIsNotConstructed = errors.New(
	"UpdateDriverLocationCommand must be created via NewUpdateDriverLocationCommand constructor",
)

// UpdateDriverLocationCommand records a driver's reported position. Both the
// location route and the ping route produce this command; only the location
// route sets broadcast, which fans the position out to subscribers of the
// driver's en_route deliveries.
type UpdateDriverLocationCommand struct { //nolint:recvcheck //using for validation
	driverID  kernel.UUID
	position  kernel.GeoPoint
	broadcast bool

	guard guard.ConstructorGuard
}

// NewUpdateDriverLocationCommand creates a command to record a driver position.
// Validates the driver ID and position.
func NewUpdateDriverLocationCommand(
	driverID kernel.UUID,
	position kernel.GeoPoint,
	broadcast bool,
) (UpdateDriverLocationCommand, error) {
	command := UpdateDriverLocationCommand{
		broadcast: broadcast,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setPosition(position),
	); err != nil {
		return UpdateDriverLocationCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateDriverLocationCommandIsNotConstructed if validation fails.
func (c UpdateDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverLocationCommandIsNotConstructed)
}

// DriverID returns the driver identifier from the command.
func (c UpdateDriverLocationCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Position returns the reported position from the command.
func (c UpdateDriverLocationCommand) Position() kernel.GeoPoint {
	return c.position
}

// Broadcast reports whether the update should be fanned out to tracking
// subscribers.
func (c UpdateDriverLocationCommand) Broadcast() bool {
	return c.broadcast
}

func (c *UpdateDriverLocationCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}

func (c *UpdateDriverLocationCommand) setPosition(position kernel.GeoPoint) error {
	if err := position.Validate(); err != nil {
		return err
	}

	c.position = position
	return nil
}
