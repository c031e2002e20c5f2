package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pawalk/pawalk-backend/internal/models"
	"github.com/pawalk/pawalk-backend/pkg/utils"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username   string  `json:"username" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	Phone      string  `json:"phone"`
	UserType   string  `json:"userType" binding:"required,oneof=owner walker"`
	HourlyRate float64 `json:"hourlyRate"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user := models.User{
			Username:    input.Username,
			Email:       input.Email,
			Password:    input.Password,
			PhoneNumber: input.Phone,
			UserType:    input.UserType,
			HourlyRate:  input.HourlyRate,
		}
		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create user: " + result.Error.Error()})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(201, gin.H{
			"token": token,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"userType": user.UserType,
			},
		})
	}
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"userType": user.UserType,
			},
		})
	}
}

// RegisterFCMToken stores the device token used by the notification
// dispatcher for push delivery.
func RegisterFCMToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userId).
			Update("fcm_token", input.Token).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to register token"})
			return
		}

		c.JSON(200, gin.H{"message": "Token registered successfully"})
	}
}
