package booking

import (
	"errors"
	"fmt"

	"github.com/pawalk/pawalk-backend/internal/models"
)

// Sentinel errors surfaced to the API boundary. These are logical failures,
// never retried; the handler layer maps them to HTTP statuses.
var (
	ErrNotFound          = errors.New("booking not found")
	ErrForbidden         = errors.New("actor is not a party to this booking")
	ErrProofIncomplete   = errors.New("at least one photo and a message are required")
	ErrStreamClosed      = errors.New("location stream is closed: booking is not in progress")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrProofWindowClosed = errors.New("proof can only be submitted for an in-progress or completed booking")
)

// InvalidTransitionError reports a rejected lifecycle edge. Both sides are
// carried so the client can resynchronize its view of the booking.
type InvalidTransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// domainError reports whether err is one of the typed validation failures
// that must never be retried.
func domainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrProofIncomplete) ||
		errors.Is(err, ErrStreamClosed) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrProofWindowClosed) ||
		IsInvalidTransition(err)
}
