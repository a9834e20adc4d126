package controllers

import (
	"context"
	"net/http"

	"github.com/rafaelschmitt/fleetfuel-backend/api/responses"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FleetFuel-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores. Cache is optional; a nil
// client just reports "disabled" instead of failing readiness.
func HealthReady(cfg *config.Config, database, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FleetFuel-Env", cfg.App.Env)

		if database == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "database client unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := database.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database ping"))
			return
		}

		cacheStatus := "disabled"
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache ping"))
				return
			}
			cacheStatus = "ok"
		}

		responses.WriteSuccess(w, map[string]string{
			"status":   "ready",
			"database": "ok",
			"cache":    cacheStatus,
		})
	}
}
