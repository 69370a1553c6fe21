package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Environment variables
const (
	EnvConfigFile  = "SHIFTCLOCK_CONFIG"
	EnvPort        = "PORT"
	EnvSecretKey   = "SECRET_KEY"
	EnvRosterPath  = "ROSTER_PATH"
	EnvLedgerPath  = "LEDGER_PATH"
	EnvStorageType = "STORAGE_TYPE"
	EnvRedisURL    = "REDIS_URL"
	EnvSessionTTL  = "SESSION_TTL"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config is the server configuration, built once at startup
type Config struct {
	// Port is the TCP port the HTTP server listens on
	Port int `yaml:"port"`
	// SessionSecret signs session cookies and tokens
	SessionSecret string `yaml:"session_secret"`
	// RosterPath is the CSV of people eligible to clock in
	RosterPath string `yaml:"roster_path"`
	// LedgerPath is the CSV attendance ledger
	LedgerPath string `yaml:"ledger_path"`
	// StorageType selects the status index and session backend
	StorageType string `yaml:"storage_type"`
	// RedisURL is required when StorageType is redis
	RedisURL string `yaml:"redis_url"`
	// SessionTTL is how long an idle browser session lives
	SessionTTL time.Duration `yaml:"session_ttl"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with defaults for everything but the secret
func Default() *Config {
	return &Config{
		Port:        5000,
		RosterPath:  "students.csv",
		LedgerPath:  "clock_in_data.csv",
		StorageType: StorageTypeMemory,
		SessionTTL:  24 * time.Hour,
		LogLevel:    "info",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// SHIFTCLOCK_CONFIG, the given .env files (".env" if none) and finally the
// process environment. Later sources win.
func Load(envFiles ...string) (*Config, error) {
	dotenv, err := readDotenv(envFiles)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	cfg := Default()
	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readDotenv(files []string) (map[string]string, error) {
	if len(files) == 0 {
		values, err := godotenv.Read()
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		return values, nil
	}
	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return values, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v, ok := lookup(EnvSessionTTL); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSessionTTL, err)
		}
		c.SessionTTL = ttl
	}

	fields := map[string]*string{
		EnvSecretKey:   &c.SessionSecret,
		EnvRosterPath:  &c.RosterPath,
		EnvLedgerPath:  &c.LedgerPath,
		EnvStorageType: &c.StorageType,
		EnvRedisURL:    &c.RedisURL,
		EnvLogLevel:    &c.LogLevel,
	}
	for key, field := range fields {
		if v, ok := lookup(key); ok {
			*field = v
		}
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("%s is required", EnvSecretKey)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%s required when %s=redis", EnvRedisURL, EnvStorageType)
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be 'memory' or 'redis'", c.StorageType)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
