package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/booking"
)

// SubmitProof records delivery evidence for a booking. At least one media
// reference and a non-blank message are required; a valid submission against
// a completed, still-escrowed booking releases the payment.
func SubmitProof(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Media   []booking.MediaInput `json:"media"`
			Message string               `json:"message"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		proof, err := engine.SubmitProof(c.Request.Context(), id, userId, input.Media, input.Message)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, proof)
	}
}

// GetProofs lists a booking's proof submissions for either party
func GetProofs(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		proofs, err := engine.Proofs(c.Request.Context(), id, userId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"proofs": proofs,
			"count":  len(proofs),
		})
	}
}
