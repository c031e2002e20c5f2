package booking

import (
	"context"
	"strings"
	"time"

	"github.com/pawalk/pawalk-backend/internal/models"
)

// MediaInput is one media reference in a proof submission.
type MediaInput struct {
	URL  string           `json:"url"`
	Type models.MediaType `json:"type"`
}

// SubmitProof records delivery evidence for a booking. The booking must be
// IN_PROGRESS or COMPLETED; a late submission against a COMPLETED booking
// whose escrow is still held re-runs settlement, so out-of-order proof
// arrival still releases funds.
func (e *Engine) SubmitProof(ctx context.Context, bookingID uint, actorID uint, media []MediaInput, message string) (*models.ServiceProof, error) {
	if len(media) == 0 || strings.TrimSpace(message) == "" {
		return nil, ErrProofIncomplete
	}

	unlock := e.lockBooking(bookingID)
	defer unlock()

	var (
		proof    *models.ServiceProof
		booking  *models.Booking
		released *models.EarningRecord
	)
	err := e.withRetry(ctx, func() error {
		released = nil
		return e.store.Transaction(ctx, func(tx Store) error {
			b, err := tx.GetBooking(ctx, bookingID)
			if err != nil {
				return err
			}
			if !b.IsParty(actorID) {
				return ErrForbidden
			}
			if b.Status != models.BookingStatusInProgress && b.Status != models.BookingStatusCompleted {
				return ErrProofWindowClosed
			}

			p := &models.ServiceProof{
				BookingID:   b.ID,
				Message:     message,
				SubmittedAt: time.Now(),
			}
			for _, m := range media {
				mediaType := m.Type
				if mediaType == "" {
					mediaType = models.MediaTypePhoto
				}
				p.Media = append(p.Media, models.ProofMedia{URL: m.URL, Type: mediaType})
			}
			if err := tx.CreateProof(ctx, p); err != nil {
				return err
			}

			// Out-of-order arrival: the walk already completed but funds
			// are still escrowed. Re-evaluate settlement now.
			if b.Status == models.BookingStatusCompleted && b.PaymentStatus == models.PaymentStatusEscrowed {
				rec, err := e.settle(ctx, tx, b)
				if err != nil {
					return err
				}
				released = rec
				if err := tx.SaveBooking(ctx, b); err != nil {
					return err
				}
			}

			proof = p
			booking = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, Event{
		Type: EventProofSubmitted, BookingID: booking.ID,
		OwnerID: booking.OwnerID, WalkerID: booking.WalkerID,
		Data: map[string]any{"proofId": proof.ID, "mediaCount": len(proof.Media)},
	})
	e.notify(ctx, booking.OwnerID, string(EventProofSubmitted), "Walk proof submitted",
		"Your walker shared photos and a note from the walk", bookingLink(booking.ID))

	if released != nil {
		e.announceRelease(ctx, booking, released)
	}
	return proof, nil
}

// ProofSatisfied reports whether the booking holds at least one submission
// with non-empty media and a non-blank message.
func (e *Engine) ProofSatisfied(ctx context.Context, bookingID uint) (bool, error) {
	return proofSatisfied(ctx, e.store, bookingID)
}

func proofSatisfied(ctx context.Context, store Store, bookingID uint) (bool, error) {
	proofs, err := store.ProofsForBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	for i := range proofs {
		if proofs[i].Valid() {
			return true, nil
		}
	}
	return false, nil
}

// Proofs lists a booking's submissions, oldest first. Parties only.
func (e *Engine) Proofs(ctx context.Context, bookingID uint, actorID uint) ([]models.ServiceProof, error) {
	b, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actorID) {
		return nil, ErrForbidden
	}
	return e.store.ProofsForBooking(ctx, bookingID)
}
