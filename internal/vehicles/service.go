package vehicles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/internal/recognition"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/ocr"
)

// Service exposes fleet vehicle management operations.
type Service interface {
	Create(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	List(ctx context.Context) ([]VehicleDTO, error)
	IdentifyByPhoto(ctx context.Context, image []byte) (*VehicleDTO, error)
}

// CreateVehicleInput holds the validated payload to register a vehicle.
type CreateVehicleInput struct {
	Plate           string
	Model           string
	Manufacturer    *string
	ManufactureYear *int
	Color           *string
	Chassis         *string
	SectorID        *uuid.UUID
}

// UpdateVehicleInput holds optional mutation values for a vehicle. Nil fields
// are left untouched; Status drives the lifecycle machine.
type UpdateVehicleInput struct {
	Plate           *string
	Model           *string
	Manufacturer    *string
	ManufactureYear *int
	Color           *string
	Chassis         *string
	SectorID        *uuid.UUID
	Status          *enums.VehicleStatus
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	reader   ocr.TextReader
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a vehicle service instance.
func NewService(repo *Repository, dbClient *db.Client, reader ocr.TextReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		reader:   reader,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Create registers a new fleet vehicle. Plates are stored normalized so every
// later comparison is a plain equality.
func (s *service) Create(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error) {
	plate := recognition.NormalizePlate(input.Plate)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate is required")
	}
	if input.Model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}

	vehicle := &models.Vehicle{
		Plate:           plate,
		Model:           input.Model,
		Manufacturer:    input.Manufacturer,
		ManufactureYear: input.ManufactureYear,
		Color:           input.Color,
		Chassis:         input.Chassis,
		SectorID:        input.SectorID,
		Status:          enums.VehicleStatusInStock,
	}

	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a vehicle with this plate already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert vehicle")
	}
	return NewVehicleDTO(created), nil
}

// Update applies the provided optional fields and, when Status is present,
// drives the lifecycle transition.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error) {
	vehicle, err := s.findVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Plate != nil {
		plate := recognition.NormalizePlate(*input.Plate)
		if plate == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate cannot be empty")
		}
		vehicle.Plate = plate
	}
	if input.Model != nil {
		vehicle.Model = *input.Model
	}
	if input.Manufacturer != nil {
		vehicle.Manufacturer = input.Manufacturer
	}
	if input.ManufactureYear != nil {
		vehicle.ManufactureYear = input.ManufactureYear
	}
	if input.Color != nil {
		vehicle.Color = input.Color
	}
	if input.Chassis != nil {
		vehicle.Chassis = input.Chassis
	}
	if input.SectorID != nil {
		vehicle.SectorID = input.SectorID
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown vehicle status")
		}
		if err := applyStatus(ctx, vehicle, *input.Status, s.now()); err != nil {
			return nil, err
		}
	}

	saved, err := s.repo.Save(ctx, vehicle)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a vehicle with this plate already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update vehicle")
	}
	return NewVehicleDTO(saved), nil
}

// Delete removes a vehicle immediately, regardless of status.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findVehicle(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete vehicle")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.findVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewVehicleDTO(vehicle), nil
}

// List sweeps expired SOLD vehicles and returns what remains. The sweep is
// lazy garbage collection tied to this read, there is no background timer.
func (s *service) List(ctx context.Context) ([]VehicleDTO, error) {
	cutoff := s.now().UTC().Add(-RetentionWindow)
	removed, err := s.repo.DeleteSoldBefore(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sweep sold vehicles")
	}
	if removed > 0 {
		s.logg.Info(s.logg.WithField(ctx, "removed", removed), "retention sweep deleted sold vehicles")
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list vehicles")
	}
	return NewVehicleDTOs(rows), nil
}

// IdentifyByPhoto resolves a plate photo to a vehicle. Exact candidate lookup
// first, substring fallback second. A SOLD vehicle is reported as a state
// conflict rather than returned.
func (s *service) IdentifyByPhoto(ctx context.Context, image []byte) (*VehicleDTO, error) {
	if s.reader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "text recognition is not configured")
	}

	text, err := s.reader.RecognizeText(ctx, image)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "text recognition unavailable")
	}
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnprocessable, "plate is not legible")
	}

	candidate := recognition.PlateCandidate(text)
	if vehicle, err := s.repo.FindByPlate(ctx, candidate); err == nil {
		return s.identified(vehicle)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup plate")
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list vehicles")
	}
	plates := make([]string, len(rows))
	for i := range rows {
		plates[i] = rows[i].Plate
	}
	if idx := recognition.FindPlate(text, plates); idx >= 0 {
		return s.identified(&rows[idx])
	}

	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no vehicle matches the photographed plate")
}

func (s *service) identified(vehicle *models.Vehicle) (*VehicleDTO, error) {
	if vehicle.Status == enums.VehicleStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is registered as sold")
	}
	return NewVehicleDTO(vehicle), nil
}

func (s *service) findVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load vehicle")
	}
	return vehicle, nil
}
