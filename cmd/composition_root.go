package cmd

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/jobs"
	"dispatch/internal/metrics"
	"dispatch/internal/tracking"
)

type CompositionRoot struct {
	configs     Config
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	geoIndex    *services.GeoIndex
	trackingHub *tracking.Hub
	logger      *slog.Logger

	assignmentsTotal  prometheus.Counter
	noDriverTotal     prometheus.Counter
	broadcastsTotal   prometheus.Counter
	activeSubscribers prometheus.Gauge
	staleDrivers      prometheus.Gauge
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	assignmentsTotal := metrics.NewAssignmentsTotal()
	noDriverTotal := metrics.NewNoDriverAvailableTotal()
	broadcastsTotal := metrics.NewBroadcastEventsTotal()
	activeSubscribers := metrics.NewActiveSubscribers()
	staleDrivers := metrics.NewStaleDrivers()
	prometheus.MustRegister(
		assignmentsTotal, noDriverTotal, broadcastsTotal, activeSubscribers, staleDrivers)

	return &CompositionRoot{
		configs:           configs,
		gormDB:            gormDB,
		uowFactory:        *postgres.NewGormUnitOfWorkFactory(gormDB),
		geoIndex:          services.NewGeoIndex(),
		trackingHub:       tracking.NewHub(logger, broadcastsTotal, activeSubscribers),
		logger:            logger,
		assignmentsTotal:  assignmentsTotal,
		noDriverTotal:     noDriverTotal,
		broadcastsTotal:   broadcastsTotal,
		activeSubscribers: activeSubscribers,
		staleDrivers:      staleDrivers,
	}
}

// WarmUpGeoIndex loads every driver from the store into the geo index.
// Called once at startup before the HTTP server accepts requests.
func (c *CompositionRoot) WarmUpGeoIndex(ctx context.Context) error {
	drivers, err := c.uowFactory.Create().DriverRepository().GetAll(ctx)
	if err != nil {
		return err
	}

	for _, d := range drivers {
		if err := c.geoIndex.Upsert(services.DriverSnapshot{
			ID:         d.ID(),
			Position:   d.Position(),
			Available:  d.IsAvailable(),
			LastPingAt: d.LastPingAt(),
		}); err != nil {
			return err
		}
	}

	c.logger.Info("geo index warmed up", slog.Int("drivers", c.geoIndex.Len()))
	return nil
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignDriverCommandHandler(f, c.geoIndex, c.trackingHub)
}

func (c *CompositionRoot) CreateCreateDriverCommandHandler() commands.CreateDriverCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateDriverCommandHandler(f, c.geoIndex)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDriverLocationCommandHandler(f, c.geoIndex, c.trackingHub)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDeliveryStatusCommandHandler(f, c.geoIndex, c.trackingHub)
}

func (c *CompositionRoot) CreateGetDeliveryStatusQueryHandler() queries.GetDeliveryStatusQueryHandler {
	return queries.NewGetDeliveryStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateStaleDriverJob() *jobs.StaleDriverJob {
	return jobs.NewStaleDriverJob(c.geoIndex, c.configs.StalePingThreshold, c.staleDrivers, c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(
		c.CreateAssignDriverCommandHandler(),
		c.CreateCreateDriverCommandHandler(),
		c.CreateUpdateDriverLocationCommandHandler(),
		c.CreateUpdateDeliveryStatusCommandHandler(),
		c.CreateGetDeliveryStatusQueryHandler(),
		c.trackingHub,
		c.configs.AssignRadiusMeters,
		c.logger,
		c.assignmentsTotal,
		c.noDriverTotal,
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}
