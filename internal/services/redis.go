package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pawalk/pawalk-backend/internal/booking"
	"github.com/pawalk/pawalk-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis(redisURL string) error {
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// LocationCache mirrors the latest GPS sample of each in-progress booking so
// the owner's live view reads from Redis instead of the points table.
type LocationCache struct{}

func NewLocationCache() *LocationCache {
	return &LocationCache{}
}

func (LocationCache) SetLatest(ctx context.Context, bookingID uint, point *models.LocationPoint) error {
	data, err := json.Marshal(point)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("booking:location:%d", bookingID)
	return RedisClient.Set(ctx, key, data, time.Hour).Err()
}

// GetLatestLocation retrieves the cached latest sample for a booking.
func GetLatestLocation(ctx context.Context, bookingID uint) (*models.LocationPoint, error) {
	key := fmt.Sprintf("booking:location:%d", bookingID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var point models.LocationPoint
	if err := json.Unmarshal([]byte(data), &point); err != nil {
		return nil, err
	}
	return &point, nil
}

// EventMirror publishes domain events to Redis pub/sub for any interested
// sidecar (analytics, ops tailing).
type EventMirror struct{}

func NewEventMirror() *EventMirror {
	return &EventMirror{}
}

func (EventMirror) Publish(ctx context.Context, event booking.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	RedisClient.Publish(ctx, "booking:events", data)
}
