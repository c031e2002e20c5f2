package database

import (
	"context"
	"errors"

	"github.com/pawalk/pawalk-backend/internal/booking"
	"github.com/pawalk/pawalk-backend/internal/models"
	"gorm.io/gorm"
)

// GormStore implements booking.Store over gorm/postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx booking.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking.ErrNotFound
	}
	return err
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *GormStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *GormStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *GormStore) BookingsByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Walker").
		Preload("Pet").
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) BookingsByWalker(ctx context.Context, walkerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("walker_id = ?", walkerID).
		Preload("Owner").
		Preload("Pet").
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) CreateProof(ctx context.Context, p *models.ServiceProof) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GormStore) ProofsForBooking(ctx context.Context, bookingID uint) ([]models.ServiceProof, error) {
	var proofs []models.ServiceProof
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("proof_media.id ASC") }).
		Order("id ASC").
		Find(&proofs).Error
	return proofs, err
}

func (s *GormStore) CreateLocationPoint(ctx context.Context, p *models.LocationPoint) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GormStore) LocationPoints(ctx context.Context, bookingID uint) ([]models.LocationPoint, error) {
	var points []models.LocationPoint
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&points).Error
	return points, err
}

func (s *GormStore) LatestLocationPoint(ctx context.Context, bookingID uint) (*models.LocationPoint, error) {
	var point models.LocationPoint
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id DESC").
		First(&point).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &point, nil
}

func (s *GormStore) CreateEarning(ctx context.Context, e *models.EarningRecord) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormStore) EarningForBooking(ctx context.Context, bookingID uint) (*models.EarningRecord, error) {
	var record models.EarningRecord
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&record).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

func (s *GormStore) SaveEarning(ctx context.Context, e *models.EarningRecord) error {
	return s.db.WithContext(ctx).Save(e).Error
}

func (s *GormStore) EarningsForWalker(ctx context.Context, walkerID uint, limit, offset int) ([]models.EarningRecord, int64, error) {
	var records []models.EarningRecord
	err := s.db.WithContext(ctx).
		Where("walker_id = ?", walkerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = s.db.WithContext(ctx).
		Model(&models.EarningRecord{}).
		Where("walker_id = ?", walkerID).
		Count(&total).Error
	return records, total, err
}

func (s *GormStore) SumEarningsForWalker(ctx context.Context, walkerID uint, status models.EarningStatus) (float64, error) {
	var sum float64
	err := s.db.WithContext(ctx).
		Model(&models.EarningRecord{}).
		Where("walker_id = ? AND status = ?", walkerID, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *GormStore) CreateTip(ctx context.Context, t *models.Tip) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *GormStore) SumTipsForWalker(ctx context.Context, walkerID uint) (float64, error) {
	var sum float64
	err := s.db.WithContext(ctx).
		Model(&models.Tip{}).
		Where("walker_id = ?", walkerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
