package controllers

import (
	"net/http"

	"github.com/rafaelschmitt/fleetfuel-backend/api/responses"
	"github.com/rafaelschmitt/fleetfuel-backend/api/validators"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/sectors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
)

type createSectorRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

func SectorCreate(svc sectors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createSectorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func SectorList(svc sectors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listed, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listed)
	}
}
