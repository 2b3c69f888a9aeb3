// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/tracking"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// DriverRepoFactory provides access to the driver repository within a transaction.
	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// DeliveryRepoFactory provides access to the delivery repository within a transaction.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// DriverUoW manages transactions for driver-only operations.
	DriverUoW interface {
		TxManager
		DriverRepoFactory
	}

	// DriverUoWFactory creates new driver unit of work instances.
	DriverUoWFactory interface {
		Create() DriverUoW
	}

	// UoW manages transactions across both driver and delivery aggregates.
	// Used for commands that coordinate changes between the two.
	UoW interface {
		TxManager
		DriverRepoFactory
		DeliveryRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// Collaborators of the command handlers beyond the store. Declared here so
// handlers depend on narrow interfaces and tests can substitute mocks.
type (
	// DriverIndex is the in-memory geospatial view of drivers used for
	// nearest-driver reservation and kept current by the handlers.
	// Implemented by services.GeoIndex.
	DriverIndex interface {
		Upsert(snapshot services.DriverSnapshot) error
		UpsertPosition(id kernel.UUID, position kernel.GeoPoint, at time.Time) error
		SetAvailability(id kernel.UUID, available bool) error
		ReserveNearest(point kernel.GeoPoint, radiusMeters float64) (services.DriverSnapshot, error)
	}

	// TrackingPublisher fans tracking events out to per-order subscribers.
	// Implemented by tracking.Hub. Publishing is best effort and happens
	// after commit; it never fails a command.
	TrackingPublisher interface {
		Register(orderID string)
		Broadcast(orderID string, event tracking.Event) int
	}
)
