package vehicles

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/ocr"
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

func newTestService(t *testing.T, client *db.Client, reader ocr.TextReader) *service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return &service{
		repo:     NewRepository(client.DB()),
		dbClient: client,
		reader:   reader,
		logg:     logg,
		now:      time.Now,
	}
}

func markSold(t *testing.T, client *db.Client, id string, soldAt time.Time) {
	t.Helper()
	err := client.DB().Model(&models.Vehicle{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": "SOLD", "sold_at": soldAt}).Error
	require.NoError(t, err)
}

type stubReader struct {
	text string
	err  error
}

func intPtr(v int) *int { return &v }

func (s *stubReader) RecognizeText(context.Context, []byte) (string, error) {
	return s.text, s.err
}
