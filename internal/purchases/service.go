package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/logger"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/pagination"
)

// Service exposes fuel purchase operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PurchaseDTO, error)
	List(ctx context.Context, input ListPurchasesInput) (*PurchaseListResult, error)
	Review(ctx context.Context, id uuid.UUID, input ReviewInput) (*PurchaseDTO, error)
}

// vehicleLoader is the slice of the vehicle repository the purchase flow needs.
type vehicleLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

// CreatePurchaseInput holds the validated payload to record a purchase.
type CreatePurchaseInput struct {
	VehicleID   uuid.UUID
	TotalAmount decimal.Decimal
	Liters      *float64
	StationName *string
	Odometer    *int
	GPSLat      *float64
	GPSLng      *float64
}

// ListPurchasesInput filters and paginates the purchase listing.
type ListPurchasesInput struct {
	Pagination pagination.Params
	VehicleID  *uuid.UUID
	UserID     *uuid.UUID
}

// ReviewInput is an administrative verdict over a pending purchase. When
// Justification is set it replaces the annotation outright, unlike the
// validator which only ever appends.
type ReviewInput struct {
	Status        enums.PurchaseStatus
	Justification *string
}

type service struct {
	repo     *Repository
	vehicles vehicleLoader
	logg     *logger.Logger
}

// NewService constructs a purchase service instance.
func NewService(repo *Repository, vehicles vehicleLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, vehicles: vehicles, logg: logg}, nil
}

// Create records a purchase in PENDING state. A SOLD vehicle rejects the
// purchase before anything is written.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error) {
	if input.TotalAmount.IsNegative() || input.TotalAmount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_amount must be positive")
	}
	if input.Odometer != nil && *input.Odometer < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "odometer cannot be negative")
	}

	vehicle, err := s.vehicles.FindByID(ctx, input.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load vehicle")
	}
	if vehicle.Status == enums.VehicleStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cannot record a purchase for a sold vehicle")
	}

	purchase := &models.FuelPurchase{
		UserID:      userID,
		VehicleID:   &vehicle.ID,
		TotalAmount: input.TotalAmount,
		Liters:      input.Liters,
		StationName: input.StationName,
		Odometer:    input.Odometer,
		GPSLat:      input.GPSLat,
		GPSLng:      input.GPSLng,
		Status:      enums.PurchaseStatusPending,
	}

	created, err := s.repo.Create(ctx, purchase)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert purchase")
	}

	ctx = s.logg.WithPurchaseID(s.logg.WithVehicleID(ctx, vehicle.ID.String()), created.ID.String())
	s.logg.Info(ctx, "fuel purchase recorded")

	return NewPurchaseDTO(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PurchaseDTO, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase")
	}
	return NewPurchaseDTO(purchase), nil
}

// List returns purchases newest first with a cursor for the next page.
func (s *service) List(ctx context.Context, input ListPurchasesInput) (*PurchaseListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	rows, err := s.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(input.Pagination.Limit), input.VehicleID, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list purchases")
	}

	result := &PurchaseListResult{Items: make([]PurchaseDTO, 0, limit)}
	for i := range rows {
		if i == limit {
			break
		}
		result.Items = append(result.Items, *NewPurchaseDTO(&rows[i]))
	}
	if len(rows) > limit {
		last := result.Items[len(result.Items)-1]
		next := pagination.EncodeCursor(pagination.Cursor{PurchasedAt: last.PurchasedAt, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

// Review applies an administrative verdict. Re-review is allowed; a reviewed
// purchase can be flipped again by a later verdict.
func (s *service) Review(ctx context.Context, id uuid.UUID, input ReviewInput) (*PurchaseDTO, error) {
	if input.Status != enums.PurchaseStatusApproved && input.Status != enums.PurchaseStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review status must be APPROVED or REJECTED")
	}

	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase")
	}

	purchase.Status = input.Status
	if input.Justification != nil {
		purchase.Annotation = input.Justification
	}

	saved, err := s.repo.Save(ctx, purchase)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update purchase")
	}

	ctx = s.logg.WithPurchaseID(ctx, saved.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "status", saved.Status.String()), "purchase reviewed")

	return NewPurchaseDTO(saved), nil
}
