package driver

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for driver operations.
var (
	// ErrNameIsRequired is returned when attempting to create a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")
	// ErrDriverNotAvailable is returned when reserving a driver that is already
	// bound to an active delivery.
	ErrDriverNotAvailable = errors.New("driver is not available")
	// ErrDriverAlreadyAvailable is returned when releasing a driver that is not
	// reserved. It indicates a double release, which is a coordinator bug.
	ErrDriverAlreadyAvailable = errors.New("driver is already available")
)

// Driver represents a delivery driver.
// It is an aggregate root that manages driver identity, availability, and the
// last reported position.
//
// Business rules:
//   - A driver must have a valid UUID, a non-empty name, and a valid position.
//   - A driver with available == false is bound to exactly one non-terminal
//     delivery; Reserve and Release enforce the flag transitions.
//   - Position updates also refresh lastPingAt; staleness of that timestamp is
//     advisory and never enforced here.
//
// Example:
//
//	position, _ := kernel.NewGeoPoint(6.9271, 79.8612)
//	d, err := driver.NewDriver(kernel.NewUUID(), "Nimal Perera", position, time.Now())
//	if err != nil {
//	    // handle construction error
//	}
type Driver struct {
	// id uniquely identifies the driver
	id kernel.UUID
	// name is the human-readable display name
	name string
	// available is true iff the driver is eligible for a new assignment
	available bool
	// position is the last reported geographic position
	position kernel.GeoPoint
	// lastPingAt records when the position was last reported
	lastPingAt time.Time
	// guard ensures the driver was properly constructed
	guard guard.ConstructorGuard
}

// NewDriver creates a new available Driver at the given position.
// lastPingAt is initialized to now; all parameters are validated and errors
// are aggregated.
func NewDriver(id kernel.UUID, name string, position kernel.GeoPoint, now time.Time) (*Driver, error) {
	d := &Driver{
		available: true,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPosition(position),
	); err != nil {
		return nil, err
	}

	d.lastPingAt = now
	return d, nil
}

// RestoreDriver reconstructs a Driver aggregate from persistent storage,
// preserving its availability and last ping timestamp. The restored driver
// behaves identically to one mutated through normal domain operations.
func RestoreDriver(
	id kernel.UUID,
	name string,
	available bool,
	position kernel.GeoPoint,
	lastPingAt time.Time,
) (*Driver, error) {
	d := &Driver{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPosition(position),
	); err != nil {
		return nil, err
	}

	d.lastPingAt = lastPingAt
	return d, nil
}

// Validate checks that the Driver was created through a constructor.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// IsEqual compares two drivers by their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	if other == nil {
		return false
	}
	return d.id.IsEqual(other.id)
}

// ID returns the driver's unique identifier.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the driver's display name.
func (d *Driver) Name() string {
	return d.name
}

// IsAvailable reports whether the driver is eligible for a new assignment.
func (d *Driver) IsAvailable() bool {
	return d.available
}

// Position returns the driver's last reported position.
func (d *Driver) Position() kernel.GeoPoint {
	return d.position
}

// LastPingAt returns when the driver last reported a position.
func (d *Driver) LastPingAt() time.Time {
	return d.lastPingAt
}

// Reserve marks the driver unavailable as part of an assignment.
// Returns ErrDriverNotAvailable if the driver is already reserved; callers
// must treat that as a lost race, not a fault.
func (d *Driver) Reserve() error {
	if !d.available {
		return ErrDriverNotAvailable
	}

	d.available = false
	return nil
}

// Release marks the driver available again after its delivery reaches a
// terminal status, or when a reservation is rolled back.
// Returns ErrDriverAlreadyAvailable on a double release.
func (d *Driver) Release() error {
	if d.available {
		return ErrDriverAlreadyAvailable
	}

	d.available = true
	return nil
}

// UpdatePosition records a new reported position and refreshes lastPingAt.
// Position updates are last-writer-wins; no ordering is guaranteed against a
// concurrent assignment snapshot.
func (d *Driver) UpdatePosition(position kernel.GeoPoint, at time.Time) error {
	if err := d.setPosition(position); err != nil {
		return err
	}

	d.lastPingAt = at
	return nil
}

// setID sets the driver's unique identifier with validation.
func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	d.id = id
	return nil
}

// setName sets the driver's name with validation.
func (d *Driver) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	d.name = name
	return nil
}

// setPosition sets the driver's position with validation.
func (d *Driver) setPosition(position kernel.GeoPoint) error {
	if err := position.Validate(); err != nil {
		return err
	}

	d.position = position
	return nil
}
