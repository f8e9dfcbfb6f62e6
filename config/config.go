package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/pricecontext/pkg/errors"
)

// Settings backends
const (
	SettingsBackendRedis  = "redis"
	SettingsBackendMemory = "memory"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Settings store configuration
	SettingsBackend string
	SettingsPrefix  string

	// Memcache configuration
	MemcacheAddr string

	// Rate snapshot configuration
	RatesURL      string
	RatesCacheTTL time.Duration

	// Page sessions
	PageURLs        []string
	RefreshInterval time.Duration
	FetchBlockTime  time.Duration

	// Error log sink for page sessions
	ErrorLogFile string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "100"))
	ratesTTL, _ := strconv.Atoi(getEnv("RATES_CACHE_TTL_SECONDS", "3600"))
	refreshInterval, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "60"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "500"))

	return &Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "pricecontext:pages"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLength,
		SettingsBackend:      getEnv("SETTINGS_BACKEND", SettingsBackendRedis),
		SettingsPrefix:       getEnv("SETTINGS_PREFIX", "pricecontext"),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RatesURL:             getEnv("RATES_URL", "rates.json"),
		RatesCacheTTL:        time.Duration(ratesTTL) * time.Second,
		PageURLs:             splitList(getEnv("PAGE_URLS", "")),
		RefreshInterval:      time.Duration(refreshInterval) * time.Second,
		FetchBlockTime:       time.Duration(blockTime) * time.Second,
		ErrorLogFile:         getEnv("ERROR_LOG_FILE", "error.log"),
		Environment:          getEnv("PRICECONTEXT_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration can be used to start the service
func (c *Config) Validate() error {
	if len(c.PageURLs) == 0 {
		return errors.NewValidation("config", "PAGE_URLS must list at least one page")
	}
	if c.RatesURL == "" {
		return errors.NewValidation("config", "RATES_URL is required")
	}
	if c.RefreshInterval <= 0 {
		return errors.NewValidation("config", "REFRESH_INTERVAL_SECONDS must be positive")
	}
	switch c.SettingsBackend {
	case SettingsBackendRedis:
		if c.RedisAddr == "" {
			return errors.NewValidation("config", "REDIS_ADDR is required for the redis settings backend")
		}
	case SettingsBackendMemory:
	default:
		return errors.NewValidation("config", "SETTINGS_BACKEND must be redis or memory")
	}
	if c.RedisStreamCount <= 0 {
		return errors.NewValidation("config", "REDIS_STREAM_COUNT must be positive")
	}
	if c.RedisStreamMaxLength <= 0 {
		return errors.NewValidation("config", "REDIS_STREAM_MAX_LENGTH must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
