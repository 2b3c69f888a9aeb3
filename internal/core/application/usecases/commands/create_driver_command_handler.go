package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/services"
)

// CreateDriverCommandHandler handles driver registration.
// Persists the new driver and publishes it to the geo index so it becomes a
// candidate for assignment immediately.
type CreateDriverCommandHandler struct {
	uowFactory DriverUoWFactory
	geoIndex   DriverIndex
}

// NewCreateDriverCommandHandler creates a handler for driver registration.
func NewCreateDriverCommandHandler(uowFactory DriverUoWFactory, geoIndex DriverIndex) CreateDriverCommandHandler {
	return CreateDriverCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
	}
}

// Handle processes the driver registration command.
// Creates the driver aggregate, persists it within a transaction and updates
// the geo index after commit. The store write is the source of truth; the
// index update cannot fail for a valid aggregate.
func (h CreateDriverCommandHandler) Handle(ctx context.Context, cmd CreateDriverCommand) error {
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

	driverEntity, err := driver.NewDriver(cmd.DriverID(), cmd.Name(), cmd.Position(), time.Now())
	if err != nil {
		return err
	}

	if err = uow.DriverRepository().Add(ctx, driverEntity); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return h.geoIndex.Upsert(services.DriverSnapshot{
		ID:         driverEntity.ID(),
		Position:   driverEntity.Position(),
		Available:  driverEntity.IsAvailable(),
		LastPingAt: driverEntity.LastPingAt(),
	})
}
