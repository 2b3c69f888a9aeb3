// Package http exposes the dispatch service over REST and WebSocket using the
// echo framework. Business outcomes are mapped to status codes here; internal
// error details never reach the client.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/tracking"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	assignHandler         commands.AssignDriverCommandHandler
	createDriverHandler   commands.CreateDriverCommandHandler
	updateLocationHandler commands.UpdateDriverLocationCommandHandler
	updateStatusHandler   commands.UpdateDeliveryStatusCommandHandler
	statusQueryHandler    queries.GetDeliveryStatusQueryHandler

	hub          *tracking.Hub
	radiusMeters float64
	logger       *slog.Logger

	assignmentsTotal prometheus.Counter
	noDriverTotal    prometheus.Counter
}

// NewServer creates an HTTP server with the required command and query
// handlers. radiusMeters is the configured driver search radius applied to
// every assignment request.
func NewServer(
	assignHandler commands.AssignDriverCommandHandler,
	createDriverHandler commands.CreateDriverCommandHandler,
	updateLocationHandler commands.UpdateDriverLocationCommandHandler,
	updateStatusHandler commands.UpdateDeliveryStatusCommandHandler,
	statusQueryHandler queries.GetDeliveryStatusQueryHandler,
	hub *tracking.Hub,
	radiusMeters float64,
	logger *slog.Logger,
	assignmentsTotal prometheus.Counter,
	noDriverTotal prometheus.Counter,
) *Server {
	return &Server{
		assignHandler:         assignHandler,
		createDriverHandler:   createDriverHandler,
		updateLocationHandler: updateLocationHandler,
		updateStatusHandler:   updateStatusHandler,
		statusQueryHandler:    statusQueryHandler,
		hub:                   hub,
		radiusMeters:          radiusMeters,
		logger:                logger,
		assignmentsTotal:      assignmentsTotal,
		noDriverTotal:         noDriverTotal,
	}
}

// RegisterRoutes binds all delivery endpoints on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/delivery")
	api.POST("/assign", s.AssignDriver)
	api.POST("/drivers", s.CreateDriver)
	api.PUT("/driver/:driverId/location", s.UpdateDriverLocation)
	api.PUT("/driver/:driverId/ping", s.PingDriver)
	api.PUT("/status/:orderId", s.UpdateDeliveryStatus)
	api.GET("/status/:orderId", s.GetDeliveryStatus)
	api.GET("/track", s.TrackDelivery)

	e.GET("/health", s.Health)
}

// AssignDriver handles POST /api/delivery/assign.
func (s *Server) AssignDriver(ctx echo.Context) error {
	var request AssignRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	dropoff, err := request.Dropoff.toGeoPoint()
	if err != nil {
		return badRequest(ctx, "Invalid dropoff: "+err.Error())
	}

	cmd, err := commands.NewAssignDriverCommand(request.OrderID, dropoff, s.radiusMeters)
	if err != nil {
		return badRequest(ctx, "Invalid assignment request: "+err.Error())
	}

	result, err := s.assignHandler.Handle(ctx.Request().Context(), cmd)
	switch {
	case errors.Is(err, commands.ErrNoDriverAvailable):
		s.noDriverTotal.Inc()
		return respondError(ctx, http.StatusNotFound, "No driver available")
	case errors.Is(err, commands.ErrDuplicateOrder):
		return respondError(ctx, http.StatusConflict, "Order already has a delivery")
	case err != nil:
		return s.internalError(ctx, "assign driver", err)
	}

	s.assignmentsTotal.Inc()
	return ctx.JSON(http.StatusOK, AssignResponse{
		DeliveryID: result.DeliveryID.String(),
		OrderID:    result.OrderID,
		Status:     result.Status.String(),
		Driver: DriverResponse{
			ID:        result.DriverID.String(),
			Name:      result.DriverName,
			Available: false,
			Location:  coordinatesFrom(result.DriverPosition),
		},
	})
}

// CreateDriver handles POST /api/delivery/drivers.
func (s *Server) CreateDriver(ctx echo.Context) error {
	var request CreateDriverRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	position, err := request.Location.toGeoPoint()
	if err != nil {
		return badRequest(ctx, "Invalid location: "+err.Error())
	}

	cmd, err := commands.NewCreateDriverCommand(request.Name, position)
	if err != nil {
		return badRequest(ctx, "Invalid driver data: "+err.Error())
	}

	if err = s.createDriverHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.internalError(ctx, "create driver", err)
	}

	return ctx.JSON(http.StatusCreated, DriverResponse{
		ID:        cmd.DriverID().String(),
		Name:      cmd.Name(),
		Available: true,
		Location:  coordinatesFrom(cmd.Position()),
	})
}

// UpdateDriverLocation handles PUT /api/delivery/driver/:driverId/location.
// The reported position is broadcast to subscribers of the driver's en_route
// deliveries.
func (s *Server) UpdateDriverLocation(ctx echo.Context) error {
	return s.handleLocationReport(ctx, true)
}

// PingDriver handles PUT /api/delivery/driver/:driverId/ping. Refreshes the
// driver's position and liveness without broadcasting.
func (s *Server) PingDriver(ctx echo.Context) error {
	return s.handleLocationReport(ctx, false)
}

func (s *Server) handleLocationReport(ctx echo.Context, broadcast bool) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("driverId"))
	if err != nil {
		return badRequest(ctx, "Invalid driverId")
	}

	var request LocationUpdateRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	position, err := request.Coordinates.toGeoPoint()
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(driverID, position, broadcast)
	if err != nil {
		return badRequest(ctx, "Invalid location report: "+err.Error())
	}

	err = s.updateLocationHandler.Handle(ctx.Request().Context(), cmd)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return respondError(ctx, http.StatusNotFound, "Driver not found")
	case err != nil:
		return s.internalError(ctx, "update driver location", err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"driverId": driverID.String(),
		"location": coordinatesFrom(position),
	})
}

// UpdateDeliveryStatus handles PUT /api/delivery/status/:orderId.
func (s *Server) UpdateDeliveryStatus(ctx echo.Context) error {
	orderID := ctx.Param("orderId")

	var request StatusUpdateRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(orderID, request.Status)
	if err != nil {
		return badRequest(ctx, "Invalid status request: "+err.Error())
	}

	err = s.updateStatusHandler.Handle(ctx.Request().Context(), cmd)
	switch {
	case errors.Is(err, delivery.ErrInvalidTransition):
		return badRequest(ctx, "Invalid status transition")
	case errors.Is(err, errs.ErrObjectNotFound):
		return respondError(ctx, http.StatusNotFound, "Delivery not found")
	case err != nil:
		return s.internalError(ctx, "update delivery status", err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"orderId": orderID,
		"status":  cmd.Status().String(),
	})
}

// GetDeliveryStatus handles GET /api/delivery/status/:orderId.
func (s *Server) GetDeliveryStatus(ctx echo.Context) error {
	query, err := queries.NewGetDeliveryStatusQuery(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid orderId")
	}

	response, err := s.statusQueryHandler.Handle(ctx.Request().Context(), query)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return respondError(ctx, http.StatusNotFound, "Delivery not found")
	case err != nil:
		return s.internalError(ctx, "get delivery status", err)
	}

	return ctx.JSON(http.StatusOK, StatusResponse{
		OrderID:        response.OrderID,
		Status:         response.Status.String(),
		DriverID:       response.DriverID.String(),
		DriverLocation: coordinatesFrom(response.DriverLocation),
	})
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) internalError(ctx echo.Context, operation string, err error) error {
	s.logger.Error("request failed",
		slog.String("operation", operation),
		slog.Any("error", err))
	return respondError(ctx, http.StatusInternalServerError, "Internal server error")
}

func badRequest(ctx echo.Context, message string) error {
	return respondError(ctx, http.StatusBadRequest, message)
}

func respondError(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, Error{Code: code, Message: message})
}
