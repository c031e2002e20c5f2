package models

import (
	"time"

	"gorm.io/gorm"
)

// LocationPoint is one GPS sample recorded during an in-progress walk.
// Points are append-only; insertion order is the storage order, recorded_at
// may jitter with client clock drift.
type LocationPoint struct {
	gorm.Model
	BookingID  uint      `json:"bookingId" gorm:"not null;index"`
	Latitude   float64   `json:"lat" gorm:"not null"`
	Longitude  float64   `json:"lng" gorm:"not null"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	RecordedAt time.Time `json:"recordedAt" gorm:"not null"`
}

// TableName specifies the table name
func (LocationPoint) TableName() string {
	return "location_points"
}
