// Package config loads server configuration from SETTLE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server configuration
type Config struct {
	Host     string `env:"SETTLE_HOST"`
	Port     int    `env:"SETTLE_PORT" envDefault:"8080"`
	LogLevel string `env:"SETTLE_LOG_LEVEL" envDefault:"info"`

	ReadTimeout     time.Duration `env:"SETTLE_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SETTLE_HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SETTLE_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	StorageType        string        `env:"SETTLE_STORAGE_TYPE" envDefault:"memory"`
	RedisURL           string        `env:"SETTLE_REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPoolSize      int           `env:"SETTLE_REDIS_POOL_SIZE" envDefault:"10"`
	RedisKeyPrefix     string        `env:"SETTLE_REDIS_KEY_PREFIX" envDefault:"settle"`
	RedisClosedRoomTTL time.Duration `env:"SETTLE_REDIS_CLOSED_ROOM_TTL"`

	// JWTSecret signs bearer tokens. When empty a random secret is generated
	// at startup and tokens do not survive a restart.
	JWTSecret string        `env:"SETTLE_JWT_SECRET"`
	TokenTTL  time.Duration `env:"SETTLE_TOKEN_TTL" envDefault:"24h"`

	Owner       model.Address `env:"SETTLE_OWNER_ADDRESS,required"`
	Deployer    model.Address `env:"SETTLE_DEPLOYER_ADDRESS"`
	Operator    model.Address `env:"SETTLE_OPERATOR_ADDRESS"`
	FeeTo       model.Address `env:"SETTLE_FEE_TO_ADDRESS"`
	PlatformFee uint64        `env:"SETTLE_PLATFORM_FEE" envDefault:"2"`
	NameSuffix  string        `env:"SETTLE_NAME_SUFFIX" envDefault:".plyr"`

	KafkaBrokers []string `env:"SETTLE_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"SETTLE_KAFKA_TOPIC" envDefault:"settlement.events"`
	EventBuffer  int      `env:"SETTLE_EVENT_BUFFER" envDefault:"1024"`
}

// Load reads the process environment
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the given variables instead of the process environment
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// The owner deploys and collects fees unless told otherwise
func (c *Config) applyDefaults() {
	if c.Deployer.IsZero() {
		c.Deployer = c.Owner
	}
	if c.FeeTo.IsZero() {
		c.FeeTo = c.Owner
	}
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
}

// Validate checks values the environment parser cannot
func (c *Config) Validate() error {
	var errs []error
	if c.Owner.IsZero() {
		errs = append(errs, errors.New("SETTLE_OWNER_ADDRESS must not be the zero address"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("SETTLE_PORT out of range: %d", c.Port))
	}
	if c.StorageType != StorageMemory && c.StorageType != StorageRedis {
		errs = append(errs, fmt.Errorf("SETTLE_STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType))
	}
	if c.PlatformFee > model.MaxPlatformFee {
		errs = append(errs, fmt.Errorf("SETTLE_PLATFORM_FEE must be at most %d", model.MaxPlatformFee))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("SETTLE_HTTP_READ_TIMEOUT and SETTLE_HTTP_WRITE_TIMEOUT must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("SETTLE_TOKEN_TTL must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("SETTLE_LOG_LEVEL: %w", err)
	}
	return level, nil
}
