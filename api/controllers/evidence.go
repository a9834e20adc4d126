package controllers

import (
	"net/http"
	"strings"

	"github.com/rafaelschmitt/fleetfuel-backend/api/responses"
	"github.com/rafaelschmitt/fleetfuel-backend/api/validators"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/evidence"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
)

// EvidenceUpload accepts one photo plus a "kind" form field, stores it
// and runs the fraud checks against the parent purchase.
func EvidenceUpload(svc evidence.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchaseID, err := validators.PathUUID(r, "purchaseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.ReadMultipartFile(w, r, "photo", maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseEvidenceKind(strings.ToUpper(strings.TrimSpace(r.FormValue("kind"))))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
			return
		}

		result, err := svc.Upload(r.Context(), evidence.UploadInput{
			PurchaseID:  purchaseID,
			Kind:        kind,
			FileName:    file.Name,
			ContentType: file.ContentType,
			Data:        file.Data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OdometerAssist reads a panel photo and returns the extracted reading
// without touching any purchase.
func OdometerAssist(svc evidence.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := validators.ReadMultipartFile(w, r, "photo", maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reading, err := svc.ReadOdometer(r.Context(), file.Data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int{"odometer": reading})
	}
}
