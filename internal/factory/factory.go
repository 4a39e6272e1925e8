package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/plyr-settlement/internal/api/sse"
	"github.com/mcoot/plyr-settlement/internal/dependencies/clock"
	"github.com/mcoot/plyr-settlement/internal/dependencies/random"
	"github.com/mcoot/plyr-settlement/internal/events"
	"github.com/mcoot/plyr-settlement/internal/platform"
	"github.com/mcoot/plyr-settlement/internal/services/auth"
	"github.com/mcoot/plyr-settlement/internal/storage"
	"github.com/mcoot/plyr-settlement/internal/storage/memory"
	redisstorage "github.com/mcoot/plyr-settlement/internal/storage/redis"
	"github.com/mcoot/plyr-settlement/internal/txn"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Event fan-out: the recorder and the live stream always, Kafka when
	// brokers are configured
	Recorder  *events.Recorder
	Stream    *sse.Hub
	Publisher events.Publisher

	// Services
	Executor    *txn.Executor
	Platform    *platform.Platform
	AuthService *auth.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// KafkaBrokers enables the Kafka event publisher when non-empty
	KafkaBrokers []string
	KafkaTopic   string
	// EventBuffer bounds the in-memory event history served by the API
	EventBuffer int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []io.Closer

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	recorder := events.NewRecorder(cfg.EventBuffer)
	hub := sse.NewHub(logger)
	go hub.Run()
	closers = append(closers, hub)
	publishers := events.Multi{recorder, hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publishers = append(publishers, kafka)
		closers = append(closers, kafka)
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.TokenTTL == 0 && authCfg.Secret == "" {
		authCfg = auth.DefaultConfig()
	}

	app, err := newWithDependencies(store, clk, rnd, recorder, publishers, authCfg, logger)
	if err != nil {
		return nil, errors.Join(err, closeAll(closers))
	}
	app.Stream = hub
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, recorder *events.Recorder, publisher events.Publisher, authCfg auth.Config, logger *slog.Logger) (*App, error) {
	executor := txn.NewExecutor(store, clk, publisher, logger)
	p, err := platform.New(executor, logger)
	if err != nil {
		return nil, err
	}
	authService := auth.New(authCfg, clk, rnd, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Recorder:    recorder,
		Publisher:   publisher,
		Executor:    executor,
		Platform:    p,
		AuthService: authService,
	}, nil
}

// Close releases the storage connection and event writers
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
