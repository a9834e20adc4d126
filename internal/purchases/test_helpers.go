package purchases

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rafaelschmitt/fleetfuel-backend/internal/vehicles"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
)

func newTestDB(t *testing.T) *db.Client {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.Sector{},
		&models.User{},
		&models.Vehicle{},
		&models.FuelPurchase{},
		&models.EvidencePhoto{},
	))
	return client
}

func newTestService(t *testing.T, client *db.Client) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(client.DB()), vehicles.NewRepository(client.DB()), logg)
	require.NoError(t, err)
	return svc
}

func mustCreateVehicle(t *testing.T, client *db.Client, plate string, status enums.VehicleStatus) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		Plate:  plate,
		Model:  "Strada",
		Status: status,
	}
	require.NoError(t, client.DB().Create(vehicle).Error)
	return vehicle
}

func mustCreateUser(t *testing.T, client *db.Client) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Test Driver",
		Email:        fmt.Sprintf("driver_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         enums.UserRoleExecutor,
		IsActive:     true,
	}
	require.NoError(t, client.DB().Create(user).Error)
	return user
}
