// Package evidence runs the fraud checks that fire when a photo is attached
// to a fuel purchase.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/internal/anomaly"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/recognition"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/ocr"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/storage/supabase"
)

// Service accepts evidence photos and validates them against the purchase.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	ReadOdometer(ctx context.Context, image []byte) (int, error)
}

// vehicleLoader is the slice of the vehicle repository the validator needs.
type vehicleLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

// UploadInput carries one uploaded photo and its target purchase.
type UploadInput struct {
	PurchaseID  uuid.UUID
	Kind        enums.EvidenceKind
	FileName    string
	ContentType string
	Data        []byte
}

// UploadResult reports the stored photo plus whatever the validator found.
// Analysis holds only this upload's findings; Annotation is the purchase's
// accumulated text after the append.
type UploadResult struct {
	Photo      purchases.EvidencePhotoDTO `json:"photo"`
	Analysis   string                     `json:"analysis"`
	Annotation *string                    `json:"annotation,omitempty"`
}

type service struct {
	repo     *purchases.Repository
	vehicles vehicleLoader
	dbClient *db.Client
	reader   ocr.TextReader
	uploader supabase.Uploader
	logg     *logger.Logger
	tempDir  string
}

// NewService constructs the evidence service.
func NewService(
	repo *purchases.Repository,
	vehicles vehicleLoader,
	dbClient *db.Client,
	reader ocr.TextReader,
	uploader supabase.Uploader,
	logg *logger.Logger,
	tempDir string,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &service{
		repo:     repo,
		vehicles: vehicles,
		dbClient: dbClient,
		reader:   reader,
		uploader: uploader,
		logg:     logg,
		tempDir:  tempDir,
	}, nil
}

// Upload stores an evidence photo and appends any anomaly findings to the
// purchase annotation. OCR trouble never fails the request, only skips the
// checks; a blob store failure is fatal because the photo row cannot exist
// without a durable URL. The temporary local copy is removed on every path.
func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "evidence kind must be PLATE or PANEL")
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo payload is empty")
	}

	purchase, err := s.repo.FindByID(ctx, input.PurchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase")
	}

	tempPath, err := s.writeTemp(input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing temp photo")
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.logg.Warn(s.logg.WithField(ctx, "path", tempPath), "temp photo cleanup failed")
		}
	}()

	ctx = s.logg.WithPurchaseID(ctx, purchase.ID.String())

	report, err := s.validate(ctx, purchase, input.Kind, input.Data)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, input.Data, s.objectName(purchase.ID, input), input.ContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "blob store upload failed")
	}

	var photo *models.EvidencePhoto
	var annotation *string
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		locked, err := txRepo.FindByIDForUpdate(ctx, purchase.ID)
		if err != nil {
			return err
		}
		if !report.Empty() {
			locked.Annotation = anomaly.AppendText(locked.Annotation, report.Render())
			if _, err := txRepo.Save(ctx, locked); err != nil {
				return err
			}
		}
		annotation = locked.Annotation

		photo = &models.EvidencePhoto{
			PurchaseID: purchase.ID,
			Kind:       input.Kind,
			URL:        url,
		}
		_, err = txRepo.CreatePhoto(ctx, photo)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: persist evidence")
	}

	if !report.Empty() {
		s.logg.Warn(s.logg.WithField(ctx, "severity", string(report.MaxSeverity())), "purchase flagged by evidence validation")
	}

	return &UploadResult{
		Photo: purchases.EvidencePhotoDTO{
			ID:        photo.ID,
			Kind:      photo.Kind.String(),
			URL:       photo.URL,
			CreatedAt: photo.CreatedAt,
		},
		Analysis:   report.Render(),
		Annotation: annotation,
	}, nil
}

// ReadOdometer is the standalone assist: OCR a panel photo and return the
// extracted reading without touching any purchase.
func (s *service) ReadOdometer(ctx context.Context, image []byte) (int, error) {
	if s.reader == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "text recognition is not configured")
	}
	text, err := s.reader.RecognizeText(ctx, image)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "text recognition unavailable")
	}
	value, ok := recognition.ExtractOdometer(text)
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeUnprocessable, "no odometer reading found")
	}
	return value, nil
}

// validate runs the kind-specific checks. OCR being unreachable or silent
// produces an empty report, never an error; a storage failure while loading
// the comparison data does fail the request.
func (s *service) validate(ctx context.Context, purchase *models.FuelPurchase, kind enums.EvidenceKind, image []byte) (*anomaly.Report, error) {
	report := &anomaly.Report{}
	if s.reader == nil {
		return report, nil
	}

	text, err := s.reader.RecognizeText(ctx, image)
	if err != nil {
		s.logg.Warn(ctx, "text recognition unavailable, skipping evidence checks")
		return report, nil
	}
	if text == "" {
		return report, nil
	}

	switch kind {
	case enums.EvidenceKindPlate:
		err = s.checkPlate(ctx, report, purchase, text)
	case enums.EvidenceKindPanel:
		err = s.checkPanel(ctx, report, purchase, text)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *service) checkPlate(ctx context.Context, report *anomaly.Report, purchase *models.FuelPurchase, text string) error {
	// A swept vehicle leaves the purchase with no plate to compare against.
	if purchase.VehicleID == nil {
		return nil
	}
	vehicle, err := s.vehicles.FindByID(ctx, *purchase.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load vehicle for plate check")
	}

	registered := recognition.NormalizePlate(vehicle.Plate)
	if registered == "" {
		return nil
	}
	if !strings.Contains(recognition.NormalizePlate(text), registered) {
		report.Add(anomaly.PlateMismatch(text, vehicle.Plate))
	}
	return nil
}

func (s *service) checkPanel(ctx context.Context, report *anomaly.Report, purchase *models.FuelPurchase, text string) error {
	extracted, ok := recognition.ExtractOdometer(text)
	if !ok {
		return nil
	}

	if purchase.Odometer != nil && extracted < *purchase.Odometer {
		report.Add(anomaly.OdometerBelowEntered(extracted, *purchase.Odometer))
	}

	if purchase.VehicleID == nil {
		return nil
	}
	previous, found, err := s.repo.LatestOtherOdometer(ctx, *purchase.VehicleID, purchase.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load odometer history")
	}
	if found && extracted <= previous {
		report.Add(anomaly.OdometerRegression(extracted, previous))
	}
	return nil
}

func (s *service) writeTemp(input UploadInput) (string, error) {
	ext := filepath.Ext(input.FileName)
	if ext == "" {
		ext = ".jpg"
	}
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return "", err
	}

	file, err := os.CreateTemp(s.tempDir, "evidence_*"+ext)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.Write(input.Data); err != nil {
		_ = os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

func (s *service) objectName(purchaseID uuid.UUID, input UploadInput) string {
	ext := strings.TrimPrefix(filepath.Ext(input.FileName), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("purchases/%s/%s_%s.%s", purchaseID, strings.ToLower(input.Kind.String()), uuid.NewString(), ext)
}
