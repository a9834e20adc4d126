package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
)

// FuelPurchase records a single refueling submitted by a driver.
// PurchasedAt is fixed at creation; Annotation accumulates anomaly findings
// appended by the evidence validator and is only ever overwritten by an
// administrative review. VehicleID is set at creation and nulled by the
// database when the vehicle is hard-deleted, so the purchase history
// outlives the retention sweep.
type FuelPurchase struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	VehicleID   *uuid.UUID           `gorm:"column:vehicle_id;type:uuid;index"`
	PurchasedAt time.Time            `gorm:"column:purchased_at;not null;index"`
	TotalAmount decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Liters      *float64             `gorm:"column:liters"`
	StationName *string              `gorm:"column:station_name;type:text"`
	Odometer    *int                 `gorm:"column:odometer"`
	GPSLat      *float64             `gorm:"column:gps_lat"`
	GPSLng      *float64             `gorm:"column:gps_lng"`
	Status      enums.PurchaseStatus `gorm:"column:status;type:text;not null;default:PENDING"`
	Annotation  *string              `gorm:"column:annotation;type:text"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Vehicle *Vehicle        `gorm:"foreignKey:VehicleID;constraint:OnDelete:SET NULL"`
	Photos  []EvidencePhoto `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
}

func (p *FuelPurchase) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now().UTC()
	}
	return nil
}
