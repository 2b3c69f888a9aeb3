package services

import (
	"errors"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrDriverNotFound is returned when no available driver satisfies the radius
// constraint of a nearest-driver query. This is an expected, common outcome
// of dispatch, not a fault.
var ErrDriverNotFound = errors.New("no available driver within radius")

// distanceToleranceMeters is the floating-point tolerance under which two
// candidate distances are considered equal and the tie is broken by the
// lexicographically smaller driver id, keeping results deterministic.
const distanceToleranceMeters = 1e-6

// DriverSnapshot is an immutable copy of one index entry, returned to callers
// so they never hold references into the index's internal state.
type DriverSnapshot struct {
	ID         kernel.UUID
	Position   kernel.GeoPoint
	Available  bool
	LastPingAt time.Time
}

// geoEntry is the mutable per-driver record owned by the index.
type geoEntry struct {
	id         kernel.UUID
	position   kernel.GeoPoint
	available  bool
	lastPingAt time.Time
}

// GeoIndex is a concurrency-safe in-memory index of driver positions and
// availability. It answers nearest-available-driver queries and performs the
// atomic select-then-reserve step of assignment: ReserveNearest holds the
// write lock across candidate selection and the availability flip, so two
// concurrent assignment attempts can never both receive the same driver.
//
// The index is warmed from the store at startup and kept current by the
// command handlers; the store remains the system of record. A single lock
// over the whole map is deliberate: driver volume is modest and position
// reads vastly outnumber reservations.
type GeoIndex struct {
	mu      sync.RWMutex
	entries map[kernel.UUID]*geoEntry
}

// NewGeoIndex creates an empty index.
func NewGeoIndex() *GeoIndex {
	return &GeoIndex{
		entries: make(map[kernel.UUID]*geoEntry),
	}
}

// Upsert inserts or fully replaces one driver entry. Used for index warm-up
// and driver onboarding, where the caller holds authoritative store state.
func (g *GeoIndex) Upsert(snapshot DriverSnapshot) error {
	if err := errors.Join(snapshot.ID.Validate(), snapshot.Position.Validate()); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[snapshot.ID] = &geoEntry{
		id:         snapshot.ID,
		position:   snapshot.Position,
		available:  snapshot.Available,
		lastPingAt: snapshot.LastPingAt,
	}
	return nil
}

// UpsertPosition records a driver's reported position and ping time.
// Position updates are last-writer-wins and visible to any nearest-driver
// query issued after this call returns.
//
// A driver unknown to the index is inserted as available; the store-level
// conditional reserve remains the authority if that assumption is stale.
func (g *GeoIndex) UpsertPosition(id kernel.UUID, position kernel.GeoPoint, at time.Time) error {
	if err := errors.Join(id.Validate(), position.Validate()); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if entry, ok := g.entries[id]; ok {
		entry.position = position
		entry.lastPingAt = at
		return nil
	}

	g.entries[id] = &geoEntry{
		id:         id,
		position:   position,
		available:  true,
		lastPingAt: at,
	}
	return nil
}

// SetAvailability flips one driver's availability flag. The change is visible
// to any query issued after this call returns.
func (g *GeoIndex) SetAvailability(id kernel.UUID, available bool) error {
	if err := id.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[id]
	if !ok {
		return errs.NewObjectNotFoundError("driverId", id.String())
	}

	entry.available = available
	return nil
}

// FindNearestAvailable returns the closest available driver within
// radiusMeters of point, without reserving it. Candidates are ordered by
// ascending great-circle distance; equidistant candidates (within tolerance)
// resolve to the lexicographically smaller id. Returns ErrDriverNotFound
// when no candidate satisfies the radius constraint.
func (g *GeoIndex) FindNearestAvailable(point kernel.GeoPoint, radiusMeters float64) (DriverSnapshot, error) {
	if err := point.Validate(); err != nil {
		return DriverSnapshot{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, err := g.nearestAvailableLocked(point, radiusMeters)
	if err != nil {
		return DriverSnapshot{}, err
	}

	return snapshotOf(entry), nil
}

// ReserveNearest atomically selects the nearest available driver within
// radiusMeters and marks it unavailable. Selection and reservation happen
// under one write lock, which is the mutual-exclusion guarantee of
// assignment. The returned snapshot reflects the reserved state.
//
// Callers that fail to complete the assignment must roll the driver back via
// SetAvailability(id, true) so no driver is leaked in a reserved state.
func (g *GeoIndex) ReserveNearest(point kernel.GeoPoint, radiusMeters float64) (DriverSnapshot, error) {
	if err := point.Validate(); err != nil {
		return DriverSnapshot{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	entry, err := g.nearestAvailableLocked(point, radiusMeters)
	if err != nil {
		return DriverSnapshot{}, err
	}

	entry.available = false
	return snapshotOf(entry), nil
}

// StaleDriverIDs returns the ids of drivers whose last ping is older than
// the cutoff. Staleness is advisory; callers only report it.
func (g *GeoIndex) StaleDriverIDs(cutoff time.Time) []kernel.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var stale []kernel.UUID
	for _, entry := range g.entries {
		if entry.lastPingAt.Before(cutoff) {
			stale = append(stale, entry.id)
		}
	}
	return stale
}

// Len returns the number of indexed drivers.
func (g *GeoIndex) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// nearestAvailableLocked scans for the closest available candidate within the
// radius. Caller must hold at least the read lock.
func (g *GeoIndex) nearestAvailableLocked(point kernel.GeoPoint, radiusMeters float64) (*geoEntry, error) {
	var (
		best     *geoEntry
		bestDist float64
	)

	for _, entry := range g.entries {
		if !entry.available {
			continue
		}

		dist, err := point.DistanceMeters(entry.position)
		if err != nil {
			return nil, err
		}

		if dist > radiusMeters {
			continue
		}

		if best == nil {
			best, bestDist = entry, dist
			continue
		}

		switch {
		case dist < bestDist-distanceToleranceMeters:
			best, bestDist = entry, dist
		case dist <= bestDist+distanceToleranceMeters &&
			entry.id.String() < best.id.String():
			// Equidistant within tolerance: deterministic id tie-break.
			best, bestDist = entry, dist
		}
	}

	if best == nil {
		return nil, ErrDriverNotFound
	}

	return best, nil
}

func snapshotOf(entry *geoEntry) DriverSnapshot {
	return DriverSnapshot{
		ID:         entry.id,
		Position:   entry.position,
		Available:  entry.available,
		LastPingAt: entry.lastPingAt,
	}
}
