package evidence

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/ocr"
)

func upload(t *testing.T, f *fixture, purchaseID uuid.UUID, kind enums.EvidenceKind) (*UploadResult, error) {
	t.Helper()
	return f.svc.Upload(context.Background(), UploadInput{
		PurchaseID:  purchaseID,
		Kind:        kind,
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("image-bytes"),
	})
}

func TestUploadPlateMismatchAppendsAnnotation(t *testing.T) {
	f := newFixture(t, &stubReader{text: "XXX0000"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "ABC1234", nil)

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPlate)
	require.NoError(t, err)

	require.NotNil(t, result.Annotation)
	assert.Equal(t, "Plate mismatch: read 'XXX0000' expected 'ABC1234'", *result.Annotation)
	assert.Equal(t, *result.Annotation, result.Analysis)
	assert.Contains(t, result.Photo.URL, "https://blob.example.com/")
}

func TestUploadPlateMatchIsSilent(t *testing.T) {
	f := newFixture(t, &stubReader{text: "BR ABC-1234 XY"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "ABC1234", nil)

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPlate)
	require.NoError(t, err)

	assert.Nil(t, result.Annotation)
	assert.Empty(t, result.Analysis)
}

func TestUploadPanelBelowEnteredValue(t *testing.T) {
	f := newFixture(t, &stubReader{text: "km 19000"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "PNL0X01", intPtr(20000))

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPanel)
	require.NoError(t, err)

	require.NotNil(t, result.Annotation)
	assert.Contains(t, *result.Annotation, "less than entered value (20000)")
	assert.NotContains(t, *result.Annotation, "Critical")
}

func TestUploadPanelAboveEnteredValueIsSilent(t *testing.T) {
	f := newFixture(t, &stubReader{text: "km 21000"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "PNL0X02", intPtr(20000))

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPanel)
	require.NoError(t, err)

	assert.Nil(t, result.Annotation)
}

func TestUploadPanelHistoricalRegression(t *testing.T) {
	f := newFixture(t, &stubReader{text: "29500 km"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "PNL0X03", nil)

	prior := &models.FuelPurchase{
		UserID:      purchase.UserID,
		VehicleID:   purchase.VehicleID,
		PurchasedAt: purchase.PurchasedAt.Add(-time.Second),
		TotalAmount: purchase.TotalAmount,
		Odometer:    intPtr(30000),
		Status:      enums.PurchaseStatusPending,
	}
	require.NoError(t, f.client.DB().Create(prior).Error)

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPanel)
	require.NoError(t, err)

	require.NotNil(t, result.Annotation)
	assert.Contains(t, *result.Annotation, "Critical")
	assert.Contains(t, *result.Annotation, "regressed")
	assert.Contains(t, *result.Annotation, "previous recorded (30000)")
}

func TestUploadPanelBothChecksTrigger(t *testing.T) {
	f := newFixture(t, &stubReader{text: "19000"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "PNL0X04", intPtr(20000))

	prior := &models.FuelPurchase{
		UserID:      purchase.UserID,
		VehicleID:   purchase.VehicleID,
		PurchasedAt: purchase.PurchasedAt.Add(-time.Second),
		TotalAmount: purchase.TotalAmount,
		Odometer:    intPtr(30000),
		Status:      enums.PurchaseStatusPending,
	}
	require.NoError(t, f.client.DB().Create(prior).Error)

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPanel)
	require.NoError(t, err)

	require.NotNil(t, result.Annotation)
	assert.Contains(t, *result.Annotation, "less than entered value (20000)")
	assert.Contains(t, *result.Annotation, "Critical: odometer regressed")
}

func TestUploadAccumulatesAcrossUploads(t *testing.T) {
	f := newFixture(t, &stubReader{text: "XXX0000"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "ACC0X01", nil)

	first, err := upload(t, f, purchase.ID, enums.EvidenceKindPlate)
	require.NoError(t, err)
	second, err := upload(t, f, purchase.ID, enums.EvidenceKindPlate)
	require.NoError(t, err)

	require.NotNil(t, second.Annotation)
	assert.Equal(t, *first.Annotation+" "+first.Analysis, *second.Annotation, "repeat findings append without dedup")
}

func TestUploadSucceedsWhenOCRUnavailable(t *testing.T) {
	f := newFixture(t, &stubReader{err: ocr.ErrUnavailable}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "OCR0X01", intPtr(100))

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPanel)
	require.NoError(t, err, "OCR outage must not fail the upload")

	assert.Nil(t, result.Annotation)
	assert.NotEmpty(t, result.Photo.URL)

	var count int64
	require.NoError(t, f.client.DB().Model(&models.EvidencePhoto{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUploadSucceedsWhenNoTextFound(t *testing.T) {
	f := newFixture(t, &stubReader{text: ""}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "OCR0X02", nil)

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPlate)
	require.NoError(t, err)
	assert.Nil(t, result.Annotation)
}

func TestUploadBlobFailureIsFatalAndCleansTemp(t *testing.T) {
	uploader := &stubUploader{err: errors.New("bucket offline")}
	f := newFixture(t, &stubReader{text: "ABC1234"}, uploader)
	purchase := f.mustCreatePurchase(t, "ABC1234", nil)

	_, err := upload(t, f, purchase.ID, enums.EvidenceKindPlate)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	// no photo row without a durable URL
	var count int64
	require.NoError(t, f.client.DB().Model(&models.EvidencePhoto{}).Count(&count).Error)
	assert.Zero(t, count)

	// the temp copy is gone even on the failure path
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp photo must be removed on failure")
}

func TestUploadRejectsUnknownKindAndMissingPurchase(t *testing.T) {
	f := newFixture(t, &stubReader{}, &stubUploader{})

	_, err := f.svc.Upload(context.Background(), UploadInput{Kind: enums.EvidenceKind("SELFIE"), Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	f.mustCreatePurchase(t, "MIS0X01", nil)
	_, err = f.svc.Upload(context.Background(), UploadInput{
		PurchaseID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Kind:       enums.EvidenceKindPlate,
		Data:       []byte("x"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

type failingVehicleLoader struct{}

func (failingVehicleLoader) FindByID(context.Context, uuid.UUID) (*models.Vehicle, error) {
	return nil, errors.New("connection reset by peer")
}

func TestUploadFailsWhenVehicleLookupFails(t *testing.T) {
	f := newFixture(t, &stubReader{text: "ABC1234"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "ABC1234", nil)

	uploader := &stubUploader{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		purchases.NewRepository(f.client.DB()),
		failingVehicleLoader{},
		f.client,
		&stubReader{text: "ABC1234"},
		uploader,
		logg,
		f.tempDir,
	)
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), UploadInput{
		PurchaseID:  purchase.ID,
		Kind:        enums.EvidenceKindPlate,
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("image-bytes"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	assert.Zero(t, uploader.calls, "nothing may reach the blob store on a storage failure")

	var photoCount int64
	require.NoError(t, f.client.DB().Model(&models.EvidencePhoto{}).Count(&photoCount).Error)
	assert.Zero(t, photoCount)
}

func TestUploadPlateCheckSkipsDetachedPurchase(t *testing.T) {
	f := newFixture(t, &stubReader{text: "ZZZ9999"}, &stubUploader{})
	purchase := f.mustCreatePurchase(t, "ABC1234", nil)

	// Simulate the retention sweep having removed the vehicle.
	require.NoError(t, f.client.DB().Model(&models.FuelPurchase{}).
		Where("id = ?", purchase.ID).Update("vehicle_id", nil).Error)
	require.NoError(t, f.client.DB().Delete(&models.Vehicle{}, "id = ?", purchase.VehicleID).Error)

	result, err := upload(t, f, purchase.ID, enums.EvidenceKindPlate)
	require.NoError(t, err)
	assert.Empty(t, result.Analysis)
	assert.Nil(t, result.Annotation)
}

func TestReadOdometerAssist(t *testing.T) {
	f := newFixture(t, &stubReader{text: "Total 15400 km 12:30"}, &stubUploader{})
	value, err := f.svc.ReadOdometer(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, 15400, value)

	f = newFixture(t, &stubReader{text: "no digits"}, &stubUploader{})
	_, err = f.svc.ReadOdometer(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnprocessable, pkgerrors.As(err).Code())

	f = newFixture(t, &stubReader{err: ocr.ErrUnavailable}, &stubUploader{})
	_, err = f.svc.ReadOdometer(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
