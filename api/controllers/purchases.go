package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rafaelschmitt/fleetfuel-backend/api/middleware"
	"github.com/rafaelschmitt/fleetfuel-backend/api/responses"
	"github.com/rafaelschmitt/fleetfuel-backend/api/validators"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/pagination"
)

type createPurchaseRequest struct {
	VehicleID   uuid.UUID       `json:"vehicle_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
	Liters      *float64        `json:"liters" validate:"omitempty,gt=0"`
	StationName *string         `json:"station_name" validate:"omitempty,max=160"`
	Odometer    *int            `json:"odometer" validate:"omitempty,min=0"`
	GPSLat      *float64        `json:"gps_lat" validate:"omitempty,min=-90,max=90"`
	GPSLng      *float64        `json:"gps_lng" validate:"omitempty,min=-180,max=180"`
}

type reviewPurchaseRequest struct {
	Status        string  `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Justification *string `json:"justification" validate:"omitempty,max=2000"`
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return id, nil
}

func PurchaseCreate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createPurchaseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), userID, purchases.CreatePurchaseInput{
			VehicleID:   body.VehicleID,
			TotalAmount: body.TotalAmount,
			Liters:      body.Liters,
			StationName: body.StationName,
			Odometer:    body.Odometer,
			GPSLat:      body.GPSLat,
			GPSLng:      body.GPSLng,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func PurchaseGet(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "purchaseID")
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

func PurchaseList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := validators.ParseQueryUUID(r, "vehicle_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), purchases.ListPurchasesInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
			VehicleID: vehicleID,
			UserID:    userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PurchaseReview records an administrative verdict on a purchase.
func PurchaseReview(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "purchaseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reviewPurchaseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParsePurchaseStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		justification := body.Justification
		if justification != nil {
			cleaned := validators.SanitizeString(*justification, 2000)
			justification = &cleaned
		}

		reviewed, err := svc.Review(r.Context(), id, purchases.ReviewInput{
			Status:        status,
			Justification: justification,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviewed)
	}
}
