package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
)

// EvidencePhoto links a stored photo to the purchase it supports.
// Rows are immutable once created; the durable bytes live in the blob store.
type EvidencePhoto struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	PurchaseID uuid.UUID          `gorm:"column:purchase_id;type:uuid;not null;index"`
	Kind       enums.EvidenceKind `gorm:"column:kind;type:text;not null"`
	URL        string             `gorm:"column:url;type:text;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (e *EvidencePhoto) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
