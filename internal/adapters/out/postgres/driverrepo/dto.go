// Package driverrepo provides data transfer objects and mapping functions for
// driver persistence. Implements the repository pattern for the driver
// aggregate, converting between domain entities and database rows.
package driverrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverDTO represents the database structure for persisting driver aggregates.
type DriverDTO struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name       string      `gorm:"type:varchar(255);not null"`
	Available  bool        `gorm:"not null"`
	Location   GeoPointDTO `gorm:"embedded;embeddedPrefix:location_"`
	LastPingAt time.Time   `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "drivers".
func (DriverDTO) TableName() string {
	return "drivers"
}

// GeoPointDTO represents the embedded coordinates within the drivers table.
type GeoPointDTO struct {
	Lat float64 `gorm:"type:double precision;not null"`
	Lon float64 `gorm:"type:double precision;not null"`
}

func fromDomain(aggregate *driver.Driver) DriverDTO {
	return DriverDTO{
		ID:        aggregate.ID().Bytes(),
		Name:      aggregate.Name(),
		Available: aggregate.IsAvailable(),
		Location: GeoPointDTO{
			Lat: aggregate.Position().Lat(),
			Lon: aggregate.Position().Lon(),
		},
		LastPingAt: aggregate.LastPingAt(),
	}
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	position, err := kernel.NewGeoPoint(dto.Location.Lat, dto.Location.Lon)
	if err != nil {
		return nil, err
	}

	return driver.RestoreDriver(id, dto.Name, dto.Available, position, dto.LastPingAt)
}
