package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/models"
	"gorm.io/gorm"
)

// GetProfile retrieves the user's profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"username":    user.Username,
			"phoneNumber": user.PhoneNumber,
			"userType":    user.UserType,
			"hourlyRate":  user.HourlyRate,
		})
	}
}
