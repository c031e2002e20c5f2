package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/booking"
	"github.com/pawalk/pawalk-backend/internal/services"
)

// RecordLocation appends a GPS sample to an in-progress booking's stream
func RecordLocation(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Lat        float64    `json:"lat" binding:"required"`
			Lng        float64    `json:"lng" binding:"required"`
			Accuracy   *float64   `json:"accuracy"`
			RecordedAt *time.Time `json:"recordedAt"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// Only parties may write to the walk record.
		if _, err := engine.Booking(c.Request.Context(), id, userId); err != nil {
			respondError(c, err)
			return
		}

		in := booking.RecordInput{Lat: input.Lat, Lng: input.Lng, Accuracy: input.Accuracy}
		if input.RecordedAt != nil {
			in.RecordedAt = *input.RecordedAt
		}

		point, err := engine.Stream().Record(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, point)
	}
}

// GetLocationHistory returns a booking's recorded path in insertion order,
// with the total distance covered
func GetLocationHistory(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		if _, err := engine.Booking(c.Request.Context(), id, userId); err != nil {
			respondError(c, err)
			return
		}

		points, err := engine.Stream().History(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		distance, err := engine.Stream().Distance(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"points":     points,
			"count":      len(points),
			"distanceKm": distance,
		})
	}
}

// GetLatestLocation returns the most recent sample for the live view. The
// Redis mirror is tried first; a cache miss falls back to the points table.
func GetLatestLocation(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		if _, err := engine.Booking(c.Request.Context(), id, userId); err != nil {
			respondError(c, err)
			return
		}

		if point, err := services.GetLatestLocation(c.Request.Context(), id); err == nil {
			c.JSON(200, point)
			return
		}

		point, err := engine.Stream().Latest(c.Request.Context(), id)
		if err != nil {
			c.JSON(404, gin.H{"error": "No location recorded yet"})
			return
		}

		c.JSON(200, point)
	}
}
