package delivery

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not
	// created through a constructor function.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")
	// ErrOrderIDIsRequired is returned when attempting to create a delivery
	// without an order reference.
	ErrOrderIDIsRequired = errs.NewValueIsRequiredError("orderId")
)

// Delivery represents one delivery bound to an order. It is the aggregate
// root of the delivery lifecycle.
//
// Invariants:
//   - orderID is unique across all deliveries (enforced by the store); it is
//     the idempotency key for "one active delivery per order".
//   - driverID is set exactly once, at creation, by the assignment
//     coordinator. A delivery is therefore created directly in Assigned.
//   - pickup and dropoff points are immutable once created.
//   - status only moves forward along the transition table; no delivery is
//     ever deleted by this subsystem.
//
// Releasing the bound driver when the delivery reaches Delivered is the
// caller's responsibility, triggered on successful transition.
type Delivery struct {
	// id is the unique identifier of the delivery
	id kernel.UUID

	// orderID is the external order reference, unique per delivery
	orderID string

	// driverID is the driver bound at creation time
	driverID kernel.UUID

	// status is the current lifecycle state
	status Status

	// pickup is the driver's position at reservation time
	pickup kernel.GeoPoint

	// dropoff is the customer destination
	dropoff kernel.GeoPoint

	// createdAt and updatedAt track record timestamps
	createdAt time.Time
	updatedAt time.Time

	// isConstructed ensures the delivery was created via a constructor
	isConstructed bool
}

// NewDelivery creates a delivery for an order with a driver already bound,
// which is why the initial status is Assigned rather than Pending. The pickup
// point is the driver's position at reservation time.
func NewDelivery(
	id kernel.UUID,
	orderID string,
	driverID kernel.UUID,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	now time.Time,
) (*Delivery, error) {
	d := &Delivery{
		status:        Assigned,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setOrderID(orderID),
		d.setDriverID(driverID),
		d.setPickup(pickup),
		d.setDropoff(dropoff),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDelivery reconstructs a Delivery aggregate from persistent storage,
// preserving its status and timestamps.
func RestoreDelivery(
	id kernel.UUID,
	orderID string,
	driverID kernel.UUID,
	status Status,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	createdAt time.Time,
	updatedAt time.Time,
) (*Delivery, error) {
	d := &Delivery{
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setOrderID(orderID),
		d.setDriverID(driverID),
		d.setStatus(status),
		d.setPickup(pickup),
		d.setDropoff(dropoff),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate ensures the Delivery was created through a constructor.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

// IsEqual compares two deliveries by their unique identifiers.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID {
	return d.id
}

// OrderID returns the external order reference.
func (d *Delivery) OrderID() string {
	return d.orderID
}

// DriverID returns the identifier of the bound driver.
func (d *Delivery) DriverID() kernel.UUID {
	return d.driverID
}

// Status returns the current lifecycle status.
func (d *Delivery) Status() Status {
	return d.status
}

// Pickup returns the pickup point fixed at creation time.
func (d *Delivery) Pickup() kernel.GeoPoint {
	return d.pickup
}

// Dropoff returns the customer destination.
func (d *Delivery) Dropoff() kernel.GeoPoint {
	return d.dropoff
}

// CreatedAt returns when the delivery record was created.
func (d *Delivery) CreatedAt() time.Time {
	return d.createdAt
}

// UpdatedAt returns when the delivery record last changed.
func (d *Delivery) UpdatedAt() time.Time {
	return d.updatedAt
}

// IsTerminal reports whether the delivery has reached a terminal status.
func (d *Delivery) IsTerminal() bool {
	return d.status.IsTerminal()
}

// TransitionTo applies a status transition validated against the lifecycle
// table and refreshes updatedAt. Returns an error wrapping
// ErrInvalidTransition for any disallowed edge.
//
// When the new status is Delivered the caller must release the bound driver
// exactly once.
func (d *Delivery) TransitionTo(requested Status, now time.Time) error {
	if err := d.Validate(); err != nil {
		return err
	}

	next, err := d.status.TransitionTo(requested)
	if err != nil {
		return err
	}

	d.status = next
	d.updatedAt = now
	return nil
}

// setID sets the delivery's unique identifier with validation.
func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	d.id = id
	return nil
}

// setOrderID sets the external order reference with validation.
func (d *Delivery) setOrderID(orderID string) error {
	if orderID == "" {
		return ErrOrderIDIsRequired
	}

	d.orderID = orderID
	return nil
}

// setDriverID sets the bound driver with validation.
func (d *Delivery) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	d.driverID = driverID
	return nil
}

// setStatus sets the lifecycle status with validation.
// Used during restoration only; live mutations go through TransitionTo.
func (d *Delivery) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	d.status = status
	return nil
}

// setPickup sets the pickup point with validation.
func (d *Delivery) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}

	d.pickup = pickup
	return nil
}

// setDropoff sets the dropoff point with validation.
func (d *Delivery) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}

	d.dropoff = dropoff
	return nil
}
