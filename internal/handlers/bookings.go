package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/booking"
	"github.com/pawalk/pawalk-backend/internal/models"
)

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid booking ID"})
		return 0, false
	}
	return uint(id), true
}

// CreateBooking handles the creation of a new booking by an owner
func CreateBooking(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			WalkerID           uint                        `json:"walkerId" binding:"required"`
			PetID              uint                        `json:"petId" binding:"required"`
			StartTime          time.Time                   `json:"startTime" binding:"required"`
			EndTime            time.Time                   `json:"endTime" binding:"required"`
			ServiceType        string                      `json:"serviceType" binding:"omitempty,oneof=hourly flat"`
			BasePrice          float64                     `json:"basePrice"`
			AdditionalServices []booking.AdditionalService `json:"additionalServices"`
			Notes              string                      `json:"notes"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		b, err := engine.Create(c.Request.Context(), booking.CreateParams{
			OwnerID:            userId,
			WalkerID:           input.WalkerID,
			PetID:              input.PetID,
			StartTime:          input.StartTime,
			EndTime:            input.EndTime,
			ServiceType:        models.ServiceType(input.ServiceType),
			BasePrice:          input.BasePrice,
			AdditionalServices: input.AdditionalServices,
			Notes:              input.Notes,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, b)
	}
}

// GetBooking retrieves one booking for either party
func GetBooking(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		b, err := engine.Booking(c.Request.Context(), id, userId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, b)
	}
}

// GetOwnerBookings retrieves all bookings for the calling owner
func GetOwnerBookings(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookings, err := engine.OwnerBookings(c.Request.Context(), userId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, bookings)
	}
}

// GetWalkerBookings retrieves all bookings assigned to the calling walker
func GetWalkerBookings(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookings, err := engine.WalkerBookings(c.Request.Context(), userId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, bookings)
	}
}

// TransitionBooking moves a booking along the lifecycle graph
func TransitionBooking(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Status string `json:"status" binding:"required"`
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		status, ok := models.ParseBookingStatus(input.Status)
		if !ok {
			c.JSON(400, gin.H{"error": "Unknown status: " + input.Status})
			return
		}

		b, err := engine.Transition(c.Request.Context(), id, status, userId, input.Reason)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, b)
	}
}

// CancelBooking cancels a booking with a reason
func CancelBooking(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Reason string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		b, err := engine.Cancel(c.Request.Context(), id, userId, input.Reason)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, b)
	}
}
