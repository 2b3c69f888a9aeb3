// Package ports defines the persistence contracts of the dispatch core.
// These interfaces are the store adapter boundary: the core depends on them
// only, enabling dependency inversion and testability. Store implementations
// own their timeout/retry policy; the core never retries internally.
package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrDriverAlreadyReserved is returned by Reserve when the conditional
// availability update matched no row, meaning another caller reserved the
// driver first. Callers treat this as a lost race, not a fault.
var ErrDriverAlreadyReserved = errors.New("driver already reserved")

// DriverRepository defines the persistence contract for driver aggregates.
type DriverRepository interface {
	// Add persists a new driver aggregate to storage.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update persists changes to an existing driver aggregate.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver aggregate by its unique identifier.
	// Returns an error wrapping errs.ErrObjectNotFound when absent.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetAll retrieves every driver. Used to warm the geo index at startup.
	GetAll(ctx context.Context) ([]*driver.Driver, error)

	// Reserve atomically flips the driver's availability from true to false
	// with a conditional update ("set available = false where id = ? and
	// available"), succeeding for exactly one concurrent caller. Returns
	// ErrDriverAlreadyReserved when the flag was already false.
	Reserve(ctx context.Context, id kernel.UUID) error
}
