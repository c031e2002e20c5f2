package models

import "gorm.io/gorm"

// EarningStatus tracks whether a settlement entry has been paid out.
type EarningStatus string

const (
	EarningStatusPending  EarningStatus = "PENDING"
	EarningStatusReleased EarningStatus = "RELEASED"
)

// EarningRecord is the derived settlement entry for a walker. At most one
// exists per booking; Amount + CommissionAmount must equal the booking's
// total price.
type EarningRecord struct {
	gorm.Model
	BookingID        uint          `json:"bookingId" gorm:"not null;uniqueIndex"`
	WalkerID         uint          `json:"walkerId" gorm:"not null;index"`
	Amount           float64       `json:"amount" gorm:"not null"`
	CommissionAmount float64       `json:"commissionAmount" gorm:"not null"`
	Status           EarningStatus `json:"status" gorm:"not null;default:'PENDING'"`
	Booking          *Booking      `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name
func (EarningRecord) TableName() string {
	return "earning_records"
}
