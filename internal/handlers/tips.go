package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/booking"
	"github.com/pawalk/pawalk-backend/internal/models"
)

// CreateTip records a voluntary tip from the owner to the walker of a
// completed booking. Tips bypass the commission split entirely.
func CreateTip(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Amount float64 `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		b, err := engine.Booking(c.Request.Context(), id, userId)
		if err != nil {
			respondError(c, err)
			return
		}

		// Tipping is restricted to completed walks at this boundary; the
		// ledger itself does not re-check.
		if b.Status != models.BookingStatusCompleted {
			c.JSON(400, gin.H{"error": "Tips can only be added to completed bookings"})
			return
		}

		tip, err := engine.CreateTip(c.Request.Context(), id, userId, b.WalkerID, input.Amount)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, tip)
	}
}
