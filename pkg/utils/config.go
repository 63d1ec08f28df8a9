package utils

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Booking  BookingConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	AdminKey    string
	StoreDriver string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// BookingConfig carries the reservation lease and flat pricing. Prices are
// in minor currency units (paise, cents).
type BookingConfig struct {
	ReservationTTL time.Duration
	PricePerSeat   int64
	Currency       string
	SweepInterval  time.Duration
	NotifyTimeout  time.Duration
}

type RedisConfig struct {
	Addr             string
	Password         string
	DB               int
	SeatMapTTL       time.Duration
	RateLimitEnabled bool
	RateCapacity     int
	RateRefillEvery  time.Duration
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom reads an optional env file; a missing file falls back to
// process environment and defaults.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "bookmyseat")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("RESERVATION_TTL", "5m")
	v.SetDefault("PRICE_PER_SEAT", 20000)
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("SWEEP_INTERVAL", "1m")
	v.SetDefault("NOTIFY_TIMEOUT", "5s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SEAT_MAP_CACHE_TTL", "10s")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_CAPACITY", 30)
	v.SetDefault("RATE_LIMIT_REFILL_EVERY", "1s")
	v.SetDefault("RABBITMQ_QUEUE", "booking.confirmed")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			AdminKey:    v.GetString("ADMIN_KEY"),
			StoreDriver: v.GetString("STORE_DRIVER"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Booking: BookingConfig{
			ReservationTTL: v.GetDuration("RESERVATION_TTL"),
			PricePerSeat:   v.GetInt64("PRICE_PER_SEAT"),
			Currency:       v.GetString("CURRENCY"),
			SweepInterval:  v.GetDuration("SWEEP_INTERVAL"),
			NotifyTimeout:  v.GetDuration("NOTIFY_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:             v.GetString("REDIS_ADDR"),
			Password:         v.GetString("REDIS_PASSWORD"),
			DB:               v.GetInt("REDIS_DB"),
			SeatMapTTL:       v.GetDuration("SEAT_MAP_CACHE_TTL"),
			RateLimitEnabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RateCapacity:     v.GetInt("RATE_LIMIT_CAPACITY"),
			RateRefillEvery:  v.GetDuration("RATE_LIMIT_REFILL_EVERY"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Booking.ReservationTTL <= 0 {
		return errors.New("RESERVATION_TTL must be positive")
	}
	if c.Booking.PricePerSeat < 0 {
		return errors.New("PRICE_PER_SEAT must not be negative")
	}
	if c.Booking.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	switch c.App.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return errors.New("STORE_DRIVER must be postgres or memory")
	}
	return nil
}
