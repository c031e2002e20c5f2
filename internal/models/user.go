package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeOwner  UserType = "owner"
	UserTypeWalker UserType = "walker"
)

type User struct {
	gorm.Model
	Username     string  `json:"username" gorm:"column:username;unique;not null"`
	Email        string  `json:"email" gorm:"column:email;unique;not null"`
	Password     string  `json:"-" gorm:"-:migration"` // Temporary field for password handling
	PasswordHash string  `json:"-" gorm:"column:password_hash;not null"`
	PhoneNumber  string  `json:"phoneNumber" gorm:"column:phone_number"`
	UserType     string  `json:"userType" gorm:"column:user_type;not null"`
	HourlyRate   float64 `json:"hourlyRate" gorm:"column:hourly_rate;default:0"` // walkers only
	FCMToken     string  `json:"-" gorm:"column:fcm_token"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
