package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pawalk/pawalk-backend/internal/booking"
	"github.com/pawalk/pawalk-backend/internal/config"
	"github.com/pawalk/pawalk-backend/internal/database"
	"github.com/pawalk/pawalk-backend/internal/handlers"
	"github.com/pawalk/pawalk-backend/internal/middleware"
	"github.com/pawalk/pawalk-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := services.InitRedis(cfg.RedisURL); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Firebase is optional; booking flows work without push delivery
	if err := services.InitFirebase(cfg.FirebaseServiceAccountPath); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	hub := services.NewHub()
	go hub.Run()

	publishers := booking.MultiPublisher{hub, services.NewEventMirror()}
	if cfg.AMQPURL != "" {
		mq, err := services.NewEventPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mq.Close()
		publishers = append(publishers, mq)
	}

	store := database.NewGormStore(db)
	engine := booking.NewEngine(store, database.NewWalkerRates(store),
		booking.WithCommissionRate(cfg.CommissionRate),
		booking.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff),
		booking.WithNotifier(services.NewDispatcher(db)),
		booking.WithEventPublisher(publishers),
	)
	engine.Stream().SetCache(services.NewLocationCache())

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(engine))
				bookings.GET("/owner", handlers.GetOwnerBookings(engine))
				bookings.GET("/walker", handlers.GetWalkerBookings(engine))
				bookings.GET("/:id", handlers.GetBooking(engine))
				bookings.POST("/:id/transition", handlers.TransitionBooking(engine))
				bookings.POST("/:id/cancel", handlers.CancelBooking(engine))
				bookings.POST("/:id/proof", handlers.SubmitProof(engine))
				bookings.GET("/:id/proof", handlers.GetProofs(engine))
				bookings.POST("/:id/location", handlers.RecordLocation(engine))
				bookings.GET("/:id/location", handlers.GetLocationHistory(engine))
				bookings.GET("/:id/location/latest", handlers.GetLatestLocation(engine))
				bookings.POST("/:id/tip", handlers.CreateTip(engine))
			}

			walkers := protected.Group("/walkers")
			{
				walkers.GET("/:id/earnings", handlers.GetWalkerEarnings(engine))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.POST("/token", handlers.RegisterFCMToken(db))
			}
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
