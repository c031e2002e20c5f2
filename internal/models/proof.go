package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// MediaType distinguishes proof media entries.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// ServiceProof is one evidence submission for a booking. A booking may carry
// any number of submissions; settlement needs at least one valid one.
type ServiceProof struct {
	gorm.Model
	BookingID   uint         `json:"bookingId" gorm:"not null;index"`
	Message     string       `json:"message" gorm:"not null"`
	SubmittedAt time.Time    `json:"submittedAt" gorm:"not null"`
	Media       []ProofMedia `json:"media" gorm:"foreignKey:ProofID"`
	Booking     *Booking     `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name
func (ServiceProof) TableName() string {
	return "service_proofs"
}

// Valid reports whether the submission unlocks settlement: at least one media
// entry and a non-blank message.
func (p *ServiceProof) Valid() bool {
	return len(p.Media) > 0 && strings.TrimSpace(p.Message) != ""
}

// ProofMedia is a single photo or video reference, ordered by insertion.
type ProofMedia struct {
	gorm.Model
	ProofID uint      `json:"proofId" gorm:"not null;index"`
	URL     string    `json:"url" gorm:"not null"`
	Type    MediaType `json:"type" gorm:"not null;default:'photo'"`
}

// TableName specifies the table name
func (ProofMedia) TableName() string {
	return "proof_media"
}
