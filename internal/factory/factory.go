package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/shiftclock/internal/config"
	"github.com/mcoot/shiftclock/internal/dependencies/clock"
	"github.com/mcoot/shiftclock/internal/dependencies/random"
	"github.com/mcoot/shiftclock/internal/services/ledger"
	"github.com/mcoot/shiftclock/internal/services/roster"
	"github.com/mcoot/shiftclock/internal/services/session"
	"github.com/mcoot/shiftclock/internal/services/shift"
	"github.com/mcoot/shiftclock/internal/storage"
	"github.com/mcoot/shiftclock/internal/storage/memory"
	redisstorage "github.com/mcoot/shiftclock/internal/storage/redis"
	"github.com/mcoot/shiftclock/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageTypeMemory
	StorageTypeRedis  = config.StorageTypeRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Roster          *roster.Service
	Ledger          *ledger.Ledger
	SessionService  *session.Service
	ShiftController *shift.Controller

	// Live status board
	Hub         *sse.Hub
	Broadcaster *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// RosterPath is the roster CSV (required)
	RosterPath string
	// LedgerPath is the attendance ledger CSV (required)
	LedgerPath string
	// SessionConfig holds the signing secret and session lifetime (secret required)
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// FromConfig maps the server configuration onto a factory Config
func FromConfig(cfg *config.Config, logger *slog.Logger) Config {
	fc := Config{
		RosterPath: cfg.RosterPath,
		LedgerPath: cfg.LedgerPath,
		SessionConfig: session.Config{
			Secret: cfg.SessionSecret,
			TTL:    cfg.SessionTTL,
		},
		Logger:      logger,
		StorageType: cfg.StorageType,
	}
	if cfg.StorageType == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.SessionTTL = cfg.SessionTTL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired. The status
// index starts empty; call ShiftController.Rebuild before serving.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger()
	}

	if cfg.RosterPath == "" || cfg.LedgerPath == "" {
		return nil, errors.New("RosterPath and LedgerPath are required")
	}

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
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	sessionService, err := session.New(store, clk, rnd, cfg.SessionConfig, logger)
	if err != nil {
		return nil, err
	}

	rosterService := roster.New(cfg.RosterPath, logger)
	ledgerWriter := ledger.New(cfg.LedgerPath, logger)
	shiftController := shift.New(rosterService, ledgerWriter, store, clk, rnd, logger)

	hub := sse.NewHub(logger)
	go hub.Run()
	broadcaster := sse.NewBroadcaster(hub, shiftController, logger)
	shiftController.AddNotifier(broadcaster)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Roster:          rosterService,
		Ledger:          ledgerWriter,
		SessionService:  sessionService,
		ShiftController: shiftController,
		Hub:             hub,
		Broadcaster:     broadcaster,
	}, nil
}

// Close stops background goroutines and releases the storage backend
func (a *App) Close() error {
	a.Hub.Close()
	a.Ledger.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
