package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/tracking"
)

// UpdateDriverLocationCommandHandler persists a driver's reported position,
// refreshes the geo index, and (for the location route) broadcasts the new
// position to subscribers of the driver's en_route deliveries.
//
// Every report refreshes lastPingAt: a position update is as much evidence of
// liveness as an explicit ping.
type UpdateDriverLocationCommandHandler struct {
	uowFactory UoWFactory
	geoIndex   DriverIndex
	publisher  TrackingPublisher
}

// NewUpdateDriverLocationCommandHandler creates a handler for driver location
// reports.
func NewUpdateDriverLocationCommandHandler(
	uowFactory UoWFactory,
	geoIndex DriverIndex,
	publisher TrackingPublisher,
) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
		publisher:  publisher,
	}
}

// Handle processes the location report.
// The store write commits first; index refresh and broadcast follow, so
// subscribers never see a position the store could still roll back.
func (h UpdateDriverLocationCommandHandler) Handle(ctx context.Context, cmd UpdateDriverLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()

	driverEntity, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}

	now := time.Now()
	if err = driverEntity.UpdatePosition(cmd.Position(), now); err != nil {
		return err
	}

	if err = driverRepo.Update(ctx, driverEntity); err != nil {
		return err
	}

	var enRoute []*delivery.Delivery
	if cmd.Broadcast() {
		enRoute, err = uow.DeliveryRepository().GetEnRouteByDriver(ctx, cmd.DriverID())
		if err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.geoIndex.UpsertPosition(cmd.DriverID(), cmd.Position(), now); err != nil {
		return err
	}

	event := tracking.NewLocationUpdate(cmd.DriverID(), cmd.Position(), now)
	for _, deliveryEntity := range enRoute {
		h.publisher.Broadcast(deliveryEntity.OrderID(), event)
	}

	return nil
}
