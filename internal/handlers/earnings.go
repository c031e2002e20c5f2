package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/booking"
)

// GetWalkerEarnings returns the payout report for a walker: released and
// pending settlement totals, the tip total, and a page of recent records
func GetWalkerEarnings(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		walkerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid walker ID"})
			return
		}
		userId := c.GetUint("userId")

		// Walkers see only their own report.
		if uint(walkerID) != userId {
			c.JSON(403, gin.H{"error": "You can only view your own earnings"})
			return
		}

		pageStr := c.DefaultQuery("page", "1")
		limitStr := c.DefaultQuery("limit", "10")

		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			page = 1
		}

		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			limit = 10
		}

		offset := (page - 1) * limit

		summary, err := engine.Earnings(c.Request.Context(), uint(walkerID), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"earnings": summary,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": summary.RecordCount,
			},
		})
	}
}
