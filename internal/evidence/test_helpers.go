package evidence

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/vehicles"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/ocr"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/storage/supabase"
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

type fixture struct {
	client  *db.Client
	svc     Service
	tempDir string
}

func newFixture(t *testing.T, reader ocr.TextReader, uploader supabase.Uploader) *fixture {
	t.Helper()

	client := newTestDB(t)
	tempDir := t.TempDir()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(
		purchases.NewRepository(client.DB()),
		vehicles.NewRepository(client.DB()),
		client,
		reader,
		uploader,
		logg,
		tempDir,
	)
	require.NoError(t, err)
	return &fixture{client: client, svc: svc, tempDir: tempDir}
}

func (f *fixture) mustCreatePurchase(t *testing.T, plate string, odometer *int) *models.FuelPurchase {
	t.Helper()

	user := &models.User{
		Name:         "Test Driver",
		Email:        fmt.Sprintf("driver_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         enums.UserRoleExecutor,
		IsActive:     true,
	}
	require.NoError(t, f.client.DB().Create(user).Error)

	vehicle := &models.Vehicle{Plate: plate, Model: "Strada", Status: enums.VehicleStatusInStock}
	require.NoError(t, f.client.DB().Create(vehicle).Error)

	purchase := &models.FuelPurchase{
		UserID:      user.ID,
		VehicleID:   &vehicle.ID,
		TotalAmount: decimal.NewFromInt(150),
		Odometer:    odometer,
		Status:      enums.PurchaseStatusPending,
	}
	require.NoError(t, f.client.DB().Create(purchase).Error)
	return purchase
}

type stubReader struct {
	text string
	err  error
}

func (s *stubReader) RecognizeText(context.Context, []byte) (string, error) {
	return s.text, s.err
}

type stubUploader struct {
	url   string
	err   error
	calls int
}

func (s *stubUploader) Upload(_ context.Context, _ []byte, objectName, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.url != "" {
		return s.url, nil
	}
	return "https://blob.example.com/" + objectName, nil
}

func intPtr(v int) *int { return &v }
