package booking

import (
	"context"

	"github.com/pawalk/pawalk-backend/internal/models"
	"github.com/pawalk/pawalk-backend/pkg/utils"
)

// Booking returns one booking; parties only.
func (e *Engine) Booking(ctx context.Context, bookingID uint, actorID uint) (*models.Booking, error) {
	b, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actorID) {
		return nil, ErrForbidden
	}
	return b, nil
}

// OwnerBookings lists an owner's bookings, newest first.
func (e *Engine) OwnerBookings(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	return e.store.BookingsByOwner(ctx, ownerID)
}

// WalkerBookings lists a walker's bookings, newest first.
func (e *Engine) WalkerBookings(ctx context.Context, walkerID uint) ([]models.Booking, error) {
	return e.store.BookingsByWalker(ctx, walkerID)
}

// EarningsSummary is the walker-facing payout report: settled and still
// pending earnings, the tip total, and a page of recent records.
type EarningsSummary struct {
	WalkerID      uint                   `json:"walkerId"`
	ReleasedTotal float64                `json:"releasedTotal"`
	PendingTotal  float64                `json:"pendingTotal"`
	TipTotal      float64                `json:"tipTotal"`
	PayoutTotal   float64                `json:"payoutTotal"` // released + tips
	Records       []models.EarningRecord `json:"records"`
	RecordCount   int64                  `json:"recordCount"`
}

// Earnings builds the payout report for a walker.
func (e *Engine) Earnings(ctx context.Context, walkerID uint, limit, offset int) (*EarningsSummary, error) {
	released, err := e.store.SumEarningsForWalker(ctx, walkerID, models.EarningStatusReleased)
	if err != nil {
		return nil, err
	}
	pending, err := e.store.SumEarningsForWalker(ctx, walkerID, models.EarningStatusPending)
	if err != nil {
		return nil, err
	}
	tips, err := e.store.SumTipsForWalker(ctx, walkerID)
	if err != nil {
		return nil, err
	}
	records, count, err := e.store.EarningsForWalker(ctx, walkerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &EarningsSummary{
		WalkerID:      walkerID,
		ReleasedTotal: utils.Round2(released),
		PendingTotal:  utils.Round2(pending),
		TipTotal:      utils.Round2(tips),
		PayoutTotal:   utils.Round2(released + tips),
		Records:       records,
		RecordCount:   count,
	}, nil
}
