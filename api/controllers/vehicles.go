package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rafaelschmitt/fleetfuel-backend/api/responses"
	"github.com/rafaelschmitt/fleetfuel-backend/api/validators"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/vehicles"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
)

type createVehicleRequest struct {
	Plate           string     `json:"plate" validate:"required,min=5,max=10"`
	Model           string     `json:"model" validate:"required,max=120"`
	Manufacturer    *string    `json:"manufacturer" validate:"omitempty,max=120"`
	ManufactureYear *int       `json:"manufacture_year" validate:"omitempty,min=1950,max=2100"`
	Color           *string    `json:"color" validate:"omitempty,max=60"`
	Chassis         *string    `json:"chassis" validate:"omitempty,max=60"`
	SectorID        *uuid.UUID `json:"sector_id"`
}

type updateVehicleRequest struct {
	Plate           *string    `json:"plate" validate:"omitempty,min=5,max=10"`
	Model           *string    `json:"model" validate:"omitempty,max=120"`
	Manufacturer    *string    `json:"manufacturer" validate:"omitempty,max=120"`
	ManufactureYear *int       `json:"manufacture_year" validate:"omitempty,min=1950,max=2100"`
	Color           *string    `json:"color" validate:"omitempty,max=60"`
	Chassis         *string    `json:"chassis" validate:"omitempty,max=60"`
	SectorID        *uuid.UUID `json:"sector_id"`
	Status          *string    `json:"status" validate:"omitempty,oneof=IN_STOCK SOLD"`
}

func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), vehicles.CreateVehicleInput{
			Plate:           body.Plate,
			Model:           body.Model,
			Manufacturer:    body.Manufacturer,
			ManufactureYear: body.ManufactureYear,
			Color:           body.Color,
			Chassis:         body.Chassis,
			SectorID:        body.SectorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func VehicleList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listed, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listed)
	}
}

func VehicleGet(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

func VehicleUpdate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vehicles.UpdateVehicleInput{
			Plate:           body.Plate,
			Model:           body.Model,
			Manufacturer:    body.Manufacturer,
			ManufactureYear: body.ManufactureYear,
			Color:           body.Color,
			Chassis:         body.Chassis,
			SectorID:        body.SectorID,
		}
		if body.Status != nil {
			status, parseErr := enums.ParseVehicleStatus(*body.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func VehicleDelete(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// VehicleIdentify resolves a plate photo to a registered vehicle.
func VehicleIdentify(svc vehicles.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := validators.ReadMultipartFile(w, r, "photo", maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.IdentifyByPhoto(r.Context(), file.Data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}
