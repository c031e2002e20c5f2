package database

import (
	"github.com/pawalk/pawalk-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Pet{},
		&models.Booking{},
		&models.ServiceProof{},
		&models.ProofMedia{},
		&models.LocationPoint{},
		&models.EarningRecord{},
		&models.Tip{},
	)
	if err != nil {
		return err
	}

	if db.Migrator().HasTable(&models.User{}) {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_user_type_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_user_type_check CHECK (user_type IN ('owner', 'walker'))`)
	}

	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('PENDING', 'CONFIRMED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED'))`)
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_payment_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_payment_status_check CHECK (payment_status IN ('PENDING', 'ESCROWED', 'RELEASED', 'REFUNDED'))`)
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_price_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_price_check CHECK (base_price >= 0 AND additional_price >= 0)`)
	}

	if db.Migrator().HasTable(&models.Tip{}) {
		db.Exec(`ALTER TABLE tips DROP CONSTRAINT IF EXISTS tips_amount_check`)
		db.Exec(`ALTER TABLE tips ADD CONSTRAINT tips_amount_check CHECK (amount > 0)`)
	}

	return nil
}
