package models

import "gorm.io/gorm"

// Tip is a voluntary post-walk transfer, fully credited to the walker.
// Tips are never mutated or deleted and sit outside the commission split.
type Tip struct {
	gorm.Model
	BookingID uint     `json:"bookingId" gorm:"not null;index"`
	PayerID   uint     `json:"payerId" gorm:"not null"`
	WalkerID  uint     `json:"walkerId" gorm:"not null;index"`
	Amount    float64  `json:"amount" gorm:"not null"`
	Booking   *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name
func (Tip) TableName() string {
	return "tips"
}
