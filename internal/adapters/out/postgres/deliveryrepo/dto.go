// Package deliveryrepo provides data transfer objects and mapping functions
// for delivery persistence. The orderId unique index carried by the DTO is
// the storage-level idempotency guard for one delivery per order.
package deliveryrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// DeliveryDTO represents the database structure for persisting delivery
// aggregates.
type DeliveryDTO struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderID   string      `gorm:"type:varchar(255);not null;uniqueIndex"`
	DriverID  uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status    string      `gorm:"type:varchar(32);not null"`
	Pickup    GeoPointDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff   GeoPointDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	CreatedAt time.Time   `gorm:"not null"`
	UpdatedAt time.Time   `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "deliveries".
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// GeoPointDTO represents embedded coordinates within the deliveries table.
type GeoPointDTO struct {
	Lat float64 `gorm:"type:double precision;not null"`
	Lon float64 `gorm:"type:double precision;not null"`
}

func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:       aggregate.ID().Bytes(),
		OrderID:  aggregate.OrderID(),
		DriverID: aggregate.DriverID().Bytes(),
		Status:   aggregate.Status().String(),
		Pickup: GeoPointDTO{
			Lat: aggregate.Pickup().Lat(),
			Lon: aggregate.Pickup().Lon(),
		},
		Dropoff: GeoPointDTO{
			Lat: aggregate.Dropoff().Lat(),
			Lon: aggregate.Dropoff().Lon(),
		},
		CreatedAt: aggregate.CreatedAt(),
		UpdatedAt: aggregate.UpdatedAt(),
	}
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	status, err := delivery.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lon)
	if err != nil {
		return nil, err
	}

	dropoff, err := kernel.NewGeoPoint(dto.Dropoff.Lat, dto.Dropoff.Lon)
	if err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(
		id, dto.OrderID, driverID, status, pickup, dropoff, dto.CreatedAt, dto.UpdatedAt)
}
