package booking

import (
	"context"

	"github.com/pawalk/pawalk-backend/internal/models"
)

// Store is the persistence boundary of the engine. The production
// implementation wraps gorm/postgres (internal/database); tests use an
// in-memory fake. Implementations must return ErrNotFound for unknown ids
// and guarantee atomic read-modify-write inside Transaction.
type Store interface {
	// Transaction runs fn against a transactional view of the store and
	// commits iff fn returns nil.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	SaveBooking(ctx context.Context, b *models.Booking) error
	BookingsByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error)
	BookingsByWalker(ctx context.Context, walkerID uint) ([]models.Booking, error)

	CreateProof(ctx context.Context, p *models.ServiceProof) error
	ProofsForBooking(ctx context.Context, bookingID uint) ([]models.ServiceProof, error)

	CreateLocationPoint(ctx context.Context, p *models.LocationPoint) error
	LocationPoints(ctx context.Context, bookingID uint) ([]models.LocationPoint, error)
	LatestLocationPoint(ctx context.Context, bookingID uint) (*models.LocationPoint, error)

	CreateEarning(ctx context.Context, e *models.EarningRecord) error
	EarningForBooking(ctx context.Context, bookingID uint) (*models.EarningRecord, error)
	SaveEarning(ctx context.Context, e *models.EarningRecord) error
	EarningsForWalker(ctx context.Context, walkerID uint, limit, offset int) ([]models.EarningRecord, int64, error)
	SumEarningsForWalker(ctx context.Context, walkerID uint, status models.EarningStatus) (float64, error)

	CreateTip(ctx context.Context, t *models.Tip) error
	SumTipsForWalker(ctx context.Context, walkerID uint) (float64, error)

	GetUser(ctx context.Context, id uint) (*models.User, error)
}
