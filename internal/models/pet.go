package models

import "gorm.io/gorm"

type Pet struct {
	gorm.Model
	OwnerID uint   `json:"ownerId" gorm:"not null;index"`
	Name    string `json:"name" gorm:"not null"`
	Breed   string `json:"breed"`
	Notes   string `json:"notes"`
	Owner   *User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// TableName specifies the table name
func (Pet) TableName() string {
	return "pets"
}
