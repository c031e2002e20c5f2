package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus is the walk lifecycle state. All transitions go through
// bookingTransitions; nothing else is allowed to compare raw strings.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// PaymentStatus tracks the escrow side of a booking.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusEscrowed PaymentStatus = "ESCROWED"
	PaymentStatusReleased PaymentStatus = "RELEASED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// ServiceType selects the price basis for a booking.
type ServiceType string

const (
	ServiceTypeHourly ServiceType = "hourly"
	ServiceTypeFlat   ServiceType = "flat"
)

// bookingTransitions is the single source of truth for the lifecycle graph.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransitionTo reports whether the edge s -> next exists in the lifecycle
// graph. Terminal states have no outgoing edges.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// ParseBookingStatus validates a client-supplied status string.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	switch BookingStatus(raw) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return BookingStatus(raw), true
	}
	return "", false
}

type Booking struct {
	gorm.Model
	BookingNumber      string        `json:"bookingNumber" gorm:"uniqueIndex;not null"`
	OwnerID            uint          `json:"ownerId" gorm:"not null;index"`
	WalkerID           uint          `json:"walkerId" gorm:"not null;index"`
	PetID              uint          `json:"petId" gorm:"not null"`
	StartTime          time.Time     `json:"startTime" gorm:"not null"`
	EndTime            time.Time     `json:"endTime" gorm:"not null"`
	DurationMinutes    int           `json:"durationMinutes" gorm:"not null"`
	ServiceType        ServiceType   `json:"serviceType" gorm:"not null;default:'hourly'"`
	BasePrice          float64       `json:"basePrice" gorm:"not null"`
	AdditionalPrice    float64       `json:"additionalPrice" gorm:"not null;default:0"`
	TotalPrice         float64       `json:"totalPrice" gorm:"not null"`
	AdditionalServices string        `json:"additionalServices,omitempty"` // comma-separated tags
	Notes              string        `json:"notes,omitempty"`
	Status             BookingStatus `json:"status" gorm:"not null;default:'PENDING';index"`
	PaymentStatus      PaymentStatus `json:"paymentStatus" gorm:"not null;default:'PENDING'"`
	AwaitingProof      bool          `json:"awaitingProof" gorm:"not null;default:false"`
	CancelReason       string        `json:"cancelReason,omitempty"`
	Owner              *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Walker             *User         `json:"walker,omitempty" gorm:"foreignKey:WalkerID"`
	Pet                *Pet          `json:"pet,omitempty" gorm:"foreignKey:PetID"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// IsParty reports whether userID is the owner or the walker of the booking.
func (b *Booking) IsParty(userID uint) bool {
	return b.OwnerID == userID || b.WalkerID == userID
}
