package commands_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const testRadiusMeters = 10000.0

func newAssignFixture(t *testing.T) (commands.AssignDriverCommand, kernel.GeoPoint) {
	t.Helper()

	dropoff, err := kernel.NewGeoPoint(51.5072, -0.1276)
	require.NoError(t, err)

	cmd, err := commands.NewAssignDriverCommand("order-123", dropoff, testRadiusMeters)
	require.NoError(t, err)

	return cmd, dropoff
}

func newTestDriver(t *testing.T, id kernel.UUID, position kernel.GeoPoint) *driver.Driver {
	t.Helper()

	d, err := driver.NewDriver(id, "Sam Porter", position, time.Now())
	require.NoError(t, err)
	return d
}

func TestAssignDriverCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, dropoff := newAssignFixture(t)

	driverID := kernel.NewUUID()
	driverPos, _ := kernel.NewGeoPoint(51.51, -0.13)
	testDriver := newTestDriver(t, driverID, driverPos)
	candidate := services.DriverSnapshot{ID: driverID, Position: driverPos, Available: false}

	driverRepo := new(MockDriverRepository)
	deliveryRepo := new(MockDeliveryRepository)
	uow := new(MockUoW)
	geoIndex := new(MockDriverIndex)
	publisher := new(MockTrackingPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetByOrderID", ctx, "order-123").Return(nil, errs.ErrObjectNotFound).Once(),
		geoIndex.On("ReserveNearest", dropoff, testRadiusMeters).Return(candidate, nil).Once(),
		driverRepo.On("Reserve", ctx, driverID).Return(nil).Once(),
		driverRepo.On("Get", ctx, driverID).Return(testDriver, nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		publisher.On("Register", "order-123").Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(factory, geoIndex, publisher)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, cmd.DeliveryID().IsEqual(result.DeliveryID))
	assert.Equal(t, "order-123", result.OrderID)
	assert.Equal(t, delivery.Assigned, result.Status)
	assert.True(t, driverID.IsEqual(result.DriverID))
	assert.Equal(t, "Sam Porter", result.DriverName)
	equal, err := driverPos.IsEqual(result.DriverPosition)
	require.NoError(t, err)
	assert.True(t, equal)

	// The created delivery picks up from the driver's reserved position.
	addCall := deliveryRepo.Calls[1]
	created := addCall.Arguments[1].(*delivery.Delivery)
	equal, err = driverPos.IsEqual(created.Pickup())
	require.NoError(t, err)
	assert.True(t, equal)
	equal, err = dropoff.IsEqual(created.Dropoff())
	require.NoError(t, err)
	assert.True(t, equal)

	driverRepo.AssertExpectations(t)
	deliveryRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	geoIndex.AssertExpectations(t)
	publisher.AssertExpectations(t)
	factory.AssertExpectations(t)
	geoIndex.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything)
}

func TestAssignDriverCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	var cmd commands.AssignDriverCommand

	factory := new(MockUoWFactory)
	handler := commands.NewAssignDriverCommandHandler(factory, new(MockDriverIndex), new(MockTrackingPublisher))
	_, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrAssignDriverCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestAssignDriverCommandHandler_Handle_DuplicateOrder(t *testing.T) {
	ctx := t.Context()
	cmd, dropoff := newAssignFixture(t)

	driverID := kernel.NewUUID()
	existing, err := delivery.NewDelivery(kernel.NewUUID(), "order-123", driverID, dropoff, dropoff, time.Now())
	require.NoError(t, err)

	driverRepo := new(MockDriverRepository)
	deliveryRepo := new(MockDeliveryRepository)
	uow := new(MockUoW)
	geoIndex := new(MockDriverIndex)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetByOrderID", ctx, "order-123").Return(existing, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(factory, geoIndex, new(MockTrackingPublisher))
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrDuplicateOrder)
	geoIndex.AssertNotCalled(t, "ReserveNearest", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestAssignDriverCommandHandler_Handle_NoDriverAvailable(t *testing.T) {
	ctx := t.Context()
	cmd, dropoff := newAssignFixture(t)

	driverRepo := new(MockDriverRepository)
	deliveryRepo := new(MockDeliveryRepository)
	uow := new(MockUoW)
	geoIndex := new(MockDriverIndex)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetByOrderID", ctx, "order-123").Return(nil, errs.ErrObjectNotFound).Once(),
		geoIndex.On("ReserveNearest", dropoff, testRadiusMeters).
			Return(services.DriverSnapshot{}, services.ErrDriverNotFound).
			Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(factory, geoIndex, new(MockTrackingPublisher))
	_, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrNoDriverAvailable)
	driverRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
	geoIndex.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything)
}

func TestAssignDriverCommandHandler_Handle_StoreReserveLostRace(t *testing.T) {
	ctx := t.Context()
	cmd, dropoff := newAssignFixture(t)

	driverID := kernel.NewUUID()
	driverPos, _ := kernel.NewGeoPoint(51.51, -0.13)
	candidate := services.DriverSnapshot{ID: driverID, Position: driverPos, Available: false}

	driverRepo := new(MockDriverRepository)
	deliveryRepo := new(MockDeliveryRepository)
	uow := new(MockUoW)
	geoIndex := new(MockDriverIndex)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetByOrderID", ctx, "order-123").Return(nil, errs.ErrObjectNotFound).Once(),
		geoIndex.On("ReserveNearest", dropoff, testRadiusMeters).Return(candidate, nil).Once(),
		driverRepo.On("Reserve", ctx, driverID).Return(ports.ErrDriverAlreadyReserved).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(factory, geoIndex, new(MockTrackingPublisher))
	_, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrNoDriverAvailable)
	// The store already had the driver reserved, so the index entry stays
	// unavailable instead of being rolled back.
	geoIndex.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything)
}

func TestAssignDriverCommandHandler_Handle_PersistFailureReleasesReservation(t *testing.T) {
	ctx := t.Context()
	cmd, dropoff := newAssignFixture(t)

	driverID := kernel.NewUUID()
	driverPos, _ := kernel.NewGeoPoint(51.51, -0.13)
	testDriver := newTestDriver(t, driverID, driverPos)
	candidate := services.DriverSnapshot{ID: driverID, Position: driverPos, Available: false}

	driverRepo := new(MockDriverRepository)
	deliveryRepo := new(MockDeliveryRepository)
	uow := new(MockUoW)
	geoIndex := new(MockDriverIndex)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetByOrderID", ctx, "order-123").Return(nil, errs.ErrObjectNotFound).Once(),
		geoIndex.On("ReserveNearest", dropoff, testRadiusMeters).Return(candidate, nil).Once(),
		driverRepo.On("Reserve", ctx, driverID).Return(nil).Once(),
		driverRepo.On("Get", ctx, driverID).Return(testDriver, nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Return(errors.New("connection lost")).
			Once(),
		geoIndex.On("SetAvailability", driverID, true).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(factory, geoIndex, new(MockTrackingPublisher))
	_, err := handler.Handle(ctx, cmd)

	require.EqualError(t, err, "connection lost")
	geoIndex.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestAssignDriverCommandHandler_Handle_DuplicateOnInsertReleasesReservation(t *testing.T) {
	ctx := t.Context()
	cmd, dropoff := newAssignFixture(t)

	driverID := kernel.NewUUID()
	driverPos, _ := kernel.NewGeoPoint(51.51, -0.13)
	testDriver := newTestDriver(t, driverID, driverPos)
	candidate := services.DriverSnapshot{ID: driverID, Position: driverPos, Available: false}

	driverRepo := new(MockDriverRepository)
	deliveryRepo := new(MockDeliveryRepository)
	uow := new(MockUoW)
	geoIndex := new(MockDriverIndex)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetByOrderID", ctx, "order-123").Return(nil, errs.ErrObjectNotFound).Once(),
		geoIndex.On("ReserveNearest", dropoff, testRadiusMeters).Return(candidate, nil).Once(),
		driverRepo.On("Reserve", ctx, driverID).Return(nil).Once(),
		driverRepo.On("Get", ctx, driverID).Return(testDriver, nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Return(ports.ErrDuplicateDelivery).
			Once(),
		geoIndex.On("SetAvailability", driverID, true).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(factory, geoIndex, new(MockTrackingPublisher))
	_, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrDuplicateOrder)
	geoIndex.AssertExpectations(t)
}

func TestAssignDriverCommandHandler_Handle_CommitErrorReleasesReservation(t *testing.T) {
	ctx := t.Context()
	cmd, dropoff := newAssignFixture(t)

	driverID := kernel.NewUUID()
	driverPos, _ := kernel.NewGeoPoint(51.51, -0.13)
	testDriver := newTestDriver(t, driverID, driverPos)
	candidate := services.DriverSnapshot{ID: driverID, Position: driverPos, Available: false}

	driverRepo := new(MockDriverRepository)
	deliveryRepo := new(MockDeliveryRepository)
	uow := new(MockUoW)
	geoIndex := new(MockDriverIndex)
	publisher := new(MockTrackingPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("GetByOrderID", ctx, "order-123").Return(nil, errs.ErrObjectNotFound).Once(),
		geoIndex.On("ReserveNearest", dropoff, testRadiusMeters).Return(candidate, nil).Once(),
		driverRepo.On("Reserve", ctx, driverID).Return(nil).Once(),
		driverRepo.On("Get", ctx, driverID).Return(testDriver, nil).Once(),
		deliveryRepo.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		geoIndex.On("SetAvailability", driverID, true).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAssignDriverCommandHandler(factory, geoIndex, publisher)
	_, err := handler.Handle(ctx, cmd)

	require.EqualError(t, err, "commit error")
	publisher.AssertNotCalled(t, "Register", mock.Anything)
	geoIndex.AssertExpectations(t)
}
