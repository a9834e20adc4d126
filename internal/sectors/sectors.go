// Package sectors manages the operational units vehicles and users belong to.
package sectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
)

// SectorDTO is the API-facing shape of a sector.
type SectorDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository handles sector persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, sector *models.Sector) (*models.Sector, error) {
	if err := r.db.WithContext(ctx).Create(sector).Error; err != nil {
		return nil, err
	}
	return sector, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Sector, error) {
	var out []models.Sector
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Service exposes sector management.
type Service interface {
	Create(ctx context.Context, name string) (*SectorDTO, error)
	List(ctx context.Context) ([]SectorDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sector repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, name string) (*SectorDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	created, err := s.repo.Create(ctx, &models.Sector{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a sector with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert sector")
	}
	return &SectorDTO{ID: created.ID, Name: created.Name, CreatedAt: created.CreatedAt}, nil
}

func (s *service) List(ctx context.Context) ([]SectorDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sectors")
	}
	out := make([]SectorDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, SectorDTO{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt})
	}
	return out, nil
}
