package booking

import (
	"context"
	"fmt"

	"github.com/pawalk/pawalk-backend/internal/models"
)

// CreateTip records a voluntary transfer from the payer to the walker. Tips
// sit outside the escrow ledger: no commission, no payment-status coupling.
// Booking status is deliberately not checked here; callers restrict tipping
// to completed walks.
func (e *Engine) CreateTip(ctx context.Context, bookingID, payerID, walkerID uint, amount float64) (*models.Tip, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	b, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	tip := &models.Tip{
		BookingID: b.ID,
		PayerID:   payerID,
		WalkerID:  walkerID,
		Amount:    amount,
	}
	if err := e.store.CreateTip(ctx, tip); err != nil {
		return nil, err
	}

	e.publish(ctx, Event{
		Type: EventTipRecorded, BookingID: b.ID, OwnerID: b.OwnerID, WalkerID: walkerID,
		Data: map[string]any{"amount": amount},
	})
	e.notify(ctx, walkerID, string(EventTipRecorded), "You received a tip",
		fmt.Sprintf("A tip of %.2f was added for booking %s", amount, b.BookingNumber),
		bookingLink(b.ID))
	return tip, nil
}

// TipTotalFor sums every tip a walker has ever received.
func (e *Engine) TipTotalFor(ctx context.Context, walkerID uint) (float64, error) {
	return e.store.SumTipsForWalker(ctx, walkerID)
}
