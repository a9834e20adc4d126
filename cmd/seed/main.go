package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/internal/users"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/vehicles"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
)

// seed provisions the first admin account so a fresh deployment can log
// in and create everything else through the API. Reruns are no-ops.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	withFleet := flag.Bool("fleet", false, "also seed a small starter fleet")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Seed.AdminEmail))
	if email == "" || cfg.Seed.AdminPassword == "" {
		fmt.Fprintln(os.Stderr, "FLEETFUEL_SEED_ADMIN_EMAIL and FLEETFUEL_SEED_ADMIN_PASSWORD are required")
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	repo := users.NewRepository(dbClient.DB())

	if *withFleet {
		if err := seedFleet(ctx, dbClient, logg); err != nil {
			logg.Error(ctx, "failed to seed fleet", err)
			os.Exit(1)
		}
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Error(ctx, "failed to check for existing admin", err)
		os.Exit(1)
	}
	if existing != nil {
		logg.Info(logg.WithField(ctx, "email", email), "admin already present, nothing to do")
		return
	}

	svc, err := users.NewService(repo, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to create user service", err)
		os.Exit(1)
	}

	created, err := svc.Create(ctx, users.CreateUserInput{
		Name:     cfg.Seed.AdminName,
		Email:    email,
		Password: cfg.Seed.AdminPassword,
		Role:     enums.UserRoleAdmin,
	})
	if err != nil {
		logg.Error(ctx, "failed to seed admin", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"user_id": created.ID,
		"email":   created.Email,
	})
	logg.Info(ctx, "admin account seeded")
}

// seedFleet registers a handful of vehicles so dev environments have
// something to photograph against. Existing plates are left alone.
func seedFleet(ctx context.Context, dbClient *db.Client, logg *logger.Logger) error {
	svc, err := vehicles.NewService(vehicles.NewRepository(dbClient.DB()), dbClient, nil, logg)
	if err != nil {
		return err
	}

	starters := []vehicles.CreateVehicleInput{
		{Plate: "ABC1234", Model: "Fiorino"},
		{Plate: "DEF5A67", Model: "Strada"},
		{Plate: "GHI8B90", Model: "Saveiro"},
	}

	seeded := 0
	for _, input := range starters {
		if _, err := svc.Create(ctx, input); err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && typed.Code() == pkgerrors.CodeConflict {
				continue
			}
			return err
		}
		seeded++
	}
	logg.Info(logg.WithField(ctx, "vehicles", seeded), "starter fleet seeded")
	return nil
}
