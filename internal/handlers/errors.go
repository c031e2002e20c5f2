package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/booking"
)

// respondError maps the engine's typed failures to HTTP statuses. Validation
// errors carry the specific reason; transition rejections carry current vs
// requested state so the client can resynchronize.
func respondError(c *gin.Context, err error) {
	var ite *booking.InvalidTransitionError
	switch {
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(404, gin.H{"error": "Booking not found"})
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(403, gin.H{"error": "You are not a party to this booking"})
	case errors.As(err, &ite):
		c.JSON(400, gin.H{
			"error":           ite.Error(),
			"currentStatus":   ite.From,
			"requestedStatus": ite.To,
		})
	case errors.Is(err, booking.ErrProofIncomplete),
		errors.Is(err, booking.ErrProofWindowClosed),
		errors.Is(err, booking.ErrStreamClosed),
		errors.Is(err, booking.ErrInvalidAmount):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Internal error"})
	}
}
