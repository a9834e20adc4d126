package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
)

// UserDTO is the API-facing shape of a user; the password hash never leaves
// the persistence layer.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	SectorID  *uuid.UUID `json:"sector_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// FromModel maps the persistence model to its API shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
		SectorID:  u.SectorID,
		CreatedAt: u.CreatedAt,
	}
}

// FromModels maps a slice of users.
func FromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
