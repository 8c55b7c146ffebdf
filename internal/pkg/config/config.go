package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=5000"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:5173,https://hfe.up.railway.app,https://hfe-production.up.railway.app"`

	Booking BookingConfig
	Events  EventsConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Admin   AdminConfig
}

type BookingConfig struct {
	DailyLimit int    `env:"BOOKING_DAILY_LIMIT, default=3"`
	Timezone   string `env:"BOOKING_TIMEZONE,    default=Local"`
}

type EventsConfig struct {
	Workers int `env:"EVENT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=homeman"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	LockTTL  time.Duration `env:"LOCK_TTL,       default=10s"`
	LockWait time.Duration `env:"LOCK_WAIT,      default=5s"`
}

// AdminConfig is read by the seed-admin command only.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL,    default=admin@homeman.com"`
	Password string `env:"ADMIN_PASSWORD"`
	Name     string `env:"ADMIN_NAME,     default=Super Admin"`
	Location string `env:"ADMIN_LOCATION, default=hargeisa"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	for i, o := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(o)
	}
	return &cfg, nil
}

// Validate checks the settings the API server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Booking.DailyLimit <= 0 {
		errs = append(errs, errors.New("BOOKING_DAILY_LIMIT must be positive"))
	}
	if _, err := c.Booking.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves the timezone that defines a booking day.
func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("BOOKING_TIMEZONE %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
