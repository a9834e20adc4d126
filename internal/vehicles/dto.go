package vehicles

import (
	"time"

	"github.com/google/uuid"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
)

// VehicleDTO is the API-facing shape of a vehicle.
type VehicleDTO struct {
	ID              uuid.UUID  `json:"id"`
	Plate           string     `json:"plate"`
	Model           string     `json:"model"`
	Manufacturer    *string    `json:"manufacturer,omitempty"`
	ManufactureYear *int       `json:"manufacture_year,omitempty"`
	Color           *string    `json:"color,omitempty"`
	Chassis         *string    `json:"chassis,omitempty"`
	SectorID        *uuid.UUID `json:"sector_id,omitempty"`
	Status          string     `json:"status"`
	SoldAt          *time.Time `json:"sold_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewVehicleDTO maps the persistence model to its API shape.
func NewVehicleDTO(v *models.Vehicle) *VehicleDTO {
	if v == nil {
		return nil
	}
	return &VehicleDTO{
		ID:              v.ID,
		Plate:           v.Plate,
		Model:           v.Model,
		Manufacturer:    v.Manufacturer,
		ManufactureYear: v.ManufactureYear,
		Color:           v.Color,
		Chassis:         v.Chassis,
		SectorID:        v.SectorID,
		Status:          v.Status.String(),
		SoldAt:          v.SoldAt,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// NewVehicleDTOs maps a slice of vehicles.
func NewVehicleDTOs(rows []models.Vehicle) []VehicleDTO {
	out := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewVehicleDTO(&rows[i]))
	}
	return out
}
