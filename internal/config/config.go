package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// App holds every tunable the service reads at boot. Values come from the
// environment (a .env file is loaded first in development).
type App struct {
	// HTTP
	Port string `envconfig:"PORT" default:"8080"`

	// DB
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBName     string `envconfig:"DB_NAME" default:"pawalk"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`

	// Redis
	RedisURL string `envconfig:"REDIS_URL" default:"redis://redis:6379"`

	// RabbitMQ event fan-out
	AMQPURL      string `envconfig:"AMQP_URL" default:""`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"pawalk.events"`

	// Settlement
	CommissionRate float64 `envconfig:"COMMISSION_RATE" default:"0.13"`

	// Transient-failure retry for transition/proof writes
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBackoff  time.Duration `envconfig:"RETRY_BACKOFF" default:"50ms"`

	// Push notifications
	FirebaseServiceAccountPath string `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH" default:""`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
