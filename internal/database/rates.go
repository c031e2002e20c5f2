package database

import (
	"context"
	"fmt"

	"github.com/pawalk/pawalk-backend/internal/models"
)

// WalkerRates implements booking.RateSource from the users table.
type WalkerRates struct {
	store *GormStore
}

func NewWalkerRates(store *GormStore) *WalkerRates {
	return &WalkerRates{store: store}
}

func (r *WalkerRates) HourlyRate(ctx context.Context, walkerID uint) (float64, error) {
	user, err := r.store.GetUser(ctx, walkerID)
	if err != nil {
		return 0, err
	}
	if user.UserType != string(models.UserTypeWalker) {
		return 0, fmt.Errorf("user %d is not a walker", walkerID)
	}
	return user.HourlyRate, nil
}
