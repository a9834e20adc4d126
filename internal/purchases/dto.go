package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
)

// EvidencePhotoDTO is the API-facing shape of an uploaded evidence photo.
type EvidencePhotoDTO struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// PurchaseDTO is the API-facing shape of a fuel purchase.
type PurchaseDTO struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	VehicleID   *uuid.UUID         `json:"vehicle_id"`
	PurchasedAt time.Time          `json:"purchased_at"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Liters      *float64           `json:"liters,omitempty"`
	StationName *string            `json:"station_name,omitempty"`
	Odometer    *int               `json:"odometer,omitempty"`
	GPSLat      *float64           `json:"gps_lat,omitempty"`
	GPSLng      *float64           `json:"gps_lng,omitempty"`
	Status      string             `json:"status"`
	Annotation  *string            `json:"annotation,omitempty"`
	Photos      []EvidencePhotoDTO `json:"photos"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// PurchaseListResult is one page of purchases plus the cursor for the next.
type PurchaseListResult struct {
	Items      []PurchaseDTO `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// NewPurchaseDTO maps the persistence model to its API shape.
func NewPurchaseDTO(p *models.FuelPurchase) *PurchaseDTO {
	if p == nil {
		return nil
	}
	photos := make([]EvidencePhotoDTO, 0, len(p.Photos))
	for _, photo := range p.Photos {
		photos = append(photos, EvidencePhotoDTO{
			ID:        photo.ID,
			Kind:      photo.Kind.String(),
			URL:       photo.URL,
			CreatedAt: photo.CreatedAt,
		})
	}
	return &PurchaseDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		VehicleID:   p.VehicleID,
		PurchasedAt: p.PurchasedAt,
		TotalAmount: p.TotalAmount,
		Liters:      p.Liters,
		StationName: p.StationName,
		Odometer:    p.Odometer,
		GPSLat:      p.GPSLat,
		GPSLng:      p.GPSLng,
		Status:      p.Status.String(),
		Annotation:  p.Annotation,
		Photos:      photos,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
