package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
)

// Vehicle is a fleet entry identified by its license plate.
// SoldAt is set exactly when Status is SOLD; clearing one clears the other.
type Vehicle struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Plate           string              `gorm:"column:plate;type:text;not null;uniqueIndex"`
	Model           string              `gorm:"column:model;type:text;not null"`
	Manufacturer    *string             `gorm:"column:manufacturer;type:text"`
	ManufactureYear *int                `gorm:"column:manufacture_year"`
	Color           *string             `gorm:"column:color;type:text"`
	Chassis         *string             `gorm:"column:chassis;type:text"`
	SectorID        *uuid.UUID          `gorm:"column:sector_id;type:uuid"`
	Status          enums.VehicleStatus `gorm:"column:status;type:text;not null;default:IN_STOCK"`
	SoldAt          *time.Time          `gorm:"column:sold_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Vehicle) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
