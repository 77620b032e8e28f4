package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dailywish/go-server/internal/daily"
	"github.com/dailywish/go-server/internal/kv"
)

// DevStateSecret is used when FRAME_STATE_SECRET is unset. Fine locally,
// never in production.
const DevStateSecret = "dev_secret_change_me"

// Config holds all configuration for the frame server.
type Config struct {
	// HTTP
	Port            string
	BaseURL         string // absolute origin used in frame image/post URLs
	ClientOrigin    string // CORS origin
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Logging
	LogLevel string

	// Key-value store
	KVDriver     string
	KVURL        string
	KVSQLitePath string
	KVNamespace  string

	// Stats cache
	StatsCacheTTL  time.Duration
	StatsCacheSize int

	// Wishes
	WishesFile string

	// Frame state
	StateSecret string
	StateTTL    time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		BaseURL:         strings.TrimRight(getEnv("BASE_URL", getEnv("NEXT_PUBLIC_BASE_URL", "")), "/"),
		ClientOrigin:    getEnv("CLIENT_ORIGIN", "*"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		KVDriver:        getEnv("KV_DRIVER", ""),
		KVURL:           getEnv("KV_URL", getEnv("REDIS_URL", "")),
		KVSQLitePath:    getEnv("KV_SQLITE_PATH", ""),
		KVNamespace:     getEnv("KV_NAMESPACE", daily.DefaultNamespace),
		StatsCacheTTL:   getEnvDuration("STATS_CACHE_TTL", 5*time.Second),
		StatsCacheSize:  getEnvInt("STATS_CACHE_SIZE", 1024),
		WishesFile:      getEnv("WISHES_FILE", ""),
		StateSecret:     getEnv("FRAME_STATE_SECRET", ""),
		StateTTL:        getEnvDuration("FRAME_STATE_TTL", 48*time.Hour),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.StateSecret == "" {
		log.Warn().Msg("FRAME_STATE_SECRET not set; using development secret")
		cfg.StateSecret = DevStateSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	switch strings.ToLower(c.KVDriver) {
	case "", "redis", "sqlite", "memory", "null":
	default:
		return fmt.Errorf("KV_DRIVER must be one of redis, sqlite, memory, null; got %q", c.KVDriver)
	}
	if c.KVNamespace == "" {
		return fmt.Errorf("KV_NAMESPACE must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", c.RequestTimeout)
	}
	if c.StatsCacheSize < 0 {
		return fmt.Errorf("STATS_CACHE_SIZE must be non-negative, got %d", c.StatsCacheSize)
	}
	return nil
}

// KVOptions returns the options for kv.Open.
func (c *Config) KVOptions() kv.Options {
	return kv.Options{Driver: c.KVDriver, URL: c.KVURL, SQLitePath: c.KVSQLitePath}
}

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}
	return result
}

// getEnvDuration accepts Go durations ("5s") or bare seconds ("5").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Warn().Str("key", key).Str("value", value).Dur("default", defaultValue).Msg("invalid duration, using default")
	return defaultValue
}
