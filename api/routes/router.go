package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rafaelschmitt/fleetfuel-backend/api/controllers"
	"github.com/rafaelschmitt/fleetfuel-backend/api/middleware"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/auth"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/evidence"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/sectors"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/users"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/vehicles"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/metrics"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Redis is optional;
// without it login rate limiting is disabled.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      *db.Client
	Redis   *redis.Client
	Metrics *metrics.HTTPMetrics

	Auth      auth.Service
	Vehicles  vehicles.Service
	Purchases purchases.Service
	Evidence  evidence.Service
	Users     users.Service
	Sectors   sectors.Service

	PromHandler http.Handler
}

// cachePinger avoids handing a typed nil to the health check.
func cachePinger(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

// limiterOrNil avoids handing a typed nil to the rate limiter.
func limiterOrNil(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	maxUploadBytes := int64(cfg.Uploads.MaxUploadMB) << 20

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cachePinger(deps.Redis), logg))
	})

	if deps.PromHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.PromHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(cfg.AuthRateLimit, limiterOrNil(deps.Redis), logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		adminOnly := middleware.RequireRole(enums.UserRoleAdmin.String(), logg)

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(deps.Vehicles, logg))
			r.With(adminOnly).Post("/", controllers.VehicleCreate(deps.Vehicles, logg))
			r.Post("/identify", controllers.VehicleIdentify(deps.Vehicles, maxUploadBytes, logg))
			r.Get("/{vehicleID}", controllers.VehicleGet(deps.Vehicles, logg))
			r.With(adminOnly).Put("/{vehicleID}", controllers.VehicleUpdate(deps.Vehicles, logg))
			r.With(adminOnly).Delete("/{vehicleID}", controllers.VehicleDelete(deps.Vehicles, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.PurchaseList(deps.Purchases, logg))
			r.Post("/", controllers.PurchaseCreate(deps.Purchases, logg))
			r.Get("/{purchaseID}", controllers.PurchaseGet(deps.Purchases, logg))
			r.Post("/{purchaseID}/photos", controllers.EvidenceUpload(deps.Evidence, maxUploadBytes, logg))
			r.With(adminOnly).Patch("/{purchaseID}/review", controllers.PurchaseReview(deps.Purchases, logg))
		})

		r.Post("/assist/odometer", controllers.OdometerAssist(deps.Evidence, maxUploadBytes, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.UserList(deps.Users, logg))
			r.Post("/", controllers.UserCreate(deps.Users, logg))
			r.Patch("/{userID}", controllers.UserUpdate(deps.Users, logg))
			r.Delete("/{userID}", controllers.UserDelete(deps.Users, logg))
		})

		r.Route("/sectors", func(r chi.Router) {
			r.Get("/", controllers.SectorList(deps.Sectors, logg))
			r.With(adminOnly).Post("/", controllers.SectorCreate(deps.Sectors, logg))
		})
	})

	return r
}
