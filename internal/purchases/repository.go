package purchases

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/pagination"
)

// Repository handles fuel purchase persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, purchase *models.FuelPurchase) (*models.FuelPurchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FuelPurchase, error) {
	var purchase models.FuelPurchase
	if err := r.db.WithContext(ctx).Preload("Photos").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindByIDForUpdate loads the purchase under a row lock so concurrent
// annotation writers serialize. SQLite has a single writer and rejects the
// locking clause, so the lock is only requested on Postgres.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.FuelPurchase, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var purchase models.FuelPurchase
	if err := query.First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Save persists scalar fields only. Photos are immutable rows managed
// through CreatePhoto, so associations are omitted on update.
func (r *Repository) Save(ctx context.Context, purchase *models.FuelPurchase) (*models.FuelPurchase, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// ListPage fetches purchases newest first using keyset pagination on
// (purchased_at, id).
func (r *Repository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int, vehicleID, userID *uuid.UUID) ([]models.FuelPurchase, error) {
	query := r.db.WithContext(ctx).
		Preload("Photos").
		Order("purchased_at DESC, id DESC").
		Limit(limit)

	if vehicleID != nil {
		query = query.Where("vehicle_id = ?", *vehicleID)
	}
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if cursor != nil {
		query = query.Where(
			"purchased_at < ? OR (purchased_at = ? AND id < ?)",
			cursor.PurchasedAt, cursor.PurchasedAt, cursor.ID,
		)
	}

	var rows []models.FuelPurchase
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestOtherOdometer returns the odometer of the most recent purchase for
// the vehicle, excluding the given purchase, that carries a non-null reading.
// The boolean reports whether such a purchase exists.
func (r *Repository) LatestOtherOdometer(ctx context.Context, vehicleID, excludeID uuid.UUID) (int, bool, error) {
	var purchase models.FuelPurchase
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND id <> ? AND odometer IS NOT NULL", vehicleID, excludeID).
		Order("purchased_at DESC").
		First(&purchase).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	if purchase.Odometer == nil {
		return 0, false, nil
	}
	return *purchase.Odometer, true, nil
}

func (r *Repository) CreatePhoto(ctx context.Context, photo *models.EvidencePhoto) (*models.EvidencePhoto, error) {
	if err := r.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}
