package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/tracking"
)

// UpdateDeliveryStatusCommandHandler applies a state-machine validated status
// transition to a delivery. On the delivered transition the driver is
// released in the same transaction, then made available in the geo index.
// Every successful transition is broadcast to the order's subscribers.
type UpdateDeliveryStatusCommandHandler struct {
	uowFactory UoWFactory
	geoIndex   DriverIndex
	publisher  TrackingPublisher
}

// NewUpdateDeliveryStatusCommandHandler creates a handler for delivery status
// transitions.
func NewUpdateDeliveryStatusCommandHandler(
	uowFactory UoWFactory,
	geoIndex DriverIndex,
	publisher TrackingPublisher,
) UpdateDeliveryStatusCommandHandler {
	return UpdateDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
		publisher:  publisher,
	}
}

// Handle processes the status transition command.
// Invalid transitions surface delivery.ErrInvalidTransition and leave the
// delivery unchanged. Driver release and delivery update commit atomically;
// the index and broadcast updates follow the commit.
func (h UpdateDeliveryStatusCommandHandler) Handle(ctx context.Context, cmd UpdateDeliveryStatusCommand) error {
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

	deliveryRepo := uow.DeliveryRepository()

	deliveryEntity, err := deliveryRepo.GetByOrderID(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	now := time.Now()
	if err = deliveryEntity.TransitionTo(cmd.Status(), now); err != nil {
		return err
	}

	if err = deliveryRepo.Update(ctx, deliveryEntity); err != nil {
		return err
	}

	delivered := deliveryEntity.Status() == delivery.Delivered
	if delivered {
		driverRepo := uow.DriverRepository()

		driverEntity, getErr := driverRepo.Get(ctx, deliveryEntity.DriverID())
		if getErr != nil {
			return getErr
		}

		if err = driverEntity.Release(); err != nil {
			return err
		}

		if err = driverRepo.Update(ctx, driverEntity); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if delivered {
		// Index release after commit is best effort; a driver missing from
		// the index reappears on its next location report.
		_ = h.geoIndex.SetAvailability(deliveryEntity.DriverID(), true)
	}

	h.publisher.Broadcast(cmd.OrderID(), tracking.NewStatusUpdate(
		cmd.OrderID(), deliveryEntity.Status().String(), now))

	return nil
}
