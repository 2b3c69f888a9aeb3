package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

var (
	ErrNoDriverAvailable = errors.New("no driver available within radius")
	ErrDuplicateOrder    = errors.New("order already has a delivery")
)

// AssignDriverResult carries the outcome of a successful assignment back to
// the caller: the created delivery and the reserved driver.
type AssignDriverResult struct {
	DeliveryID     kernel.UUID
	OrderID        string
	Status         delivery.Status
	DriverID       kernel.UUID
	DriverName     string
	DriverPosition kernel.GeoPoint
}

// AssignDriverCommandHandler is the assignment coordinator. It reserves the
// nearest available driver in the geo index, confirms the reservation in the
// store with a conditional update, and creates the delivery, all such that a
// driver is never left reserved without a delivery:
//
//   - index reservation and store reservation both succeed, or
//   - the index reservation is rolled back before the handler returns.
//
// The transaction covers the store writes; the index rollback runs on every
// failure path after reservation.
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	geoIndex   DriverIndex
	publisher  TrackingPublisher
}

// NewAssignDriverCommandHandler creates a handler for driver assignment.
func NewAssignDriverCommandHandler(
	uowFactory UoWFactory,
	geoIndex DriverIndex,
	publisher TrackingPublisher,
) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
		publisher:  publisher,
	}
}

// Handle processes the assignment command.
// Returns ErrDuplicateOrder when the order already has a delivery and
// ErrNoDriverAvailable when no available driver is within the radius.
// On success the delivery is persisted in assigned status, the driver is
// unavailable in both index and store, and the order's tracking room exists.
func (h AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) (AssignDriverResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignDriverResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AssignDriverResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	deliveryRepo := uow.DeliveryRepository()

	_, err := deliveryRepo.GetByOrderID(ctx, cmd.OrderID())
	if err == nil {
		return AssignDriverResult{}, ErrDuplicateOrder
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return AssignDriverResult{}, err
	}

	candidate, err := h.geoIndex.ReserveNearest(cmd.Dropoff(), cmd.RadiusMeters())
	if errors.Is(err, services.ErrDriverNotFound) {
		return AssignDriverResult{}, ErrNoDriverAvailable
	}
	if err != nil {
		return AssignDriverResult{}, err
	}

	// The index reservation must not outlive a failed assignment.
	committed := false
	releaseReservation := true
	defer func() {
		if !committed && releaseReservation {
			_ = h.geoIndex.SetAvailability(candidate.ID, true)
		}
	}()

	if err = driverRepo.Reserve(ctx, candidate.ID); err != nil {
		if errors.Is(err, ports.ErrDriverAlreadyReserved) {
			// The index was stale: the store already has the driver
			// reserved, so keep the index entry unavailable too.
			releaseReservation = false
			return AssignDriverResult{}, ErrNoDriverAvailable
		}
		return AssignDriverResult{}, err
	}

	reservedDriver, err := driverRepo.Get(ctx, candidate.ID)
	if err != nil {
		return AssignDriverResult{}, err
	}

	// Pickup is the driver's position at reservation time.
	deliveryEntity, err := delivery.NewDelivery(
		cmd.DeliveryID(),
		cmd.OrderID(),
		candidate.ID,
		candidate.Position,
		cmd.Dropoff(),
		time.Now(),
	)
	if err != nil {
		return AssignDriverResult{}, err
	}

	if err = deliveryRepo.Add(ctx, deliveryEntity); err != nil {
		if errors.Is(err, ports.ErrDuplicateDelivery) {
			// Lost a race on the orderId unique index.
			return AssignDriverResult{}, ErrDuplicateOrder
		}
		return AssignDriverResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AssignDriverResult{}, err
	}
	committed = true

	h.publisher.Register(cmd.OrderID())

	return AssignDriverResult{
		DeliveryID:     deliveryEntity.ID(),
		OrderID:        deliveryEntity.OrderID(),
		Status:         deliveryEntity.Status(),
		DriverID:       reservedDriver.ID(),
		DriverName:     reservedDriver.Name(),
		DriverPosition: candidate.Position,
	}, nil
}
