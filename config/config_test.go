package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, "pricecontext:pages", config.RedisStream)
	assert.Equal(t, 1, config.RedisStreamCount)
	assert.Equal(t, 100, config.RedisStreamMaxLength)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, "rates.json", config.RatesURL)
	assert.Equal(t, time.Hour, config.RatesCacheTTL)
	assert.Equal(t, 60*time.Second, config.RefreshInterval)
	assert.Equal(t, SettingsBackendRedis, config.SettingsBackend)
	assert.Empty(t, config.PageURLs)

	// Test with environment variables
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("REDIS_DB", "1")
	os.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	os.Setenv("REFRESH_INTERVAL_SECONDS", "30")
	os.Setenv("RATES_URL", "https://example.com/rates.json")
	os.Setenv("PAGE_URLS", "https://a.example.com, https://b.example.com,,")
	os.Setenv("SETTINGS_BACKEND", "memory")

	config = LoadConfig()
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, 30*time.Second, config.RefreshInterval)
	assert.Equal(t, "https://example.com/rates.json", config.RatesURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.PageURLs)
	assert.Equal(t, SettingsBackendMemory, config.SettingsBackend)
	assert.NoError(t, config.Validate())

	// Clean up
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("REDIS_DB")
	os.Unsetenv("MEMCACHE_ADDR")
	os.Unsetenv("REFRESH_INTERVAL_SECONDS")
	os.Unsetenv("RATES_URL")
	os.Unsetenv("PAGE_URLS")
	os.Unsetenv("SETTINGS_BACKEND")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := LoadConfig()
		c.PageURLs = []string{"https://example.com"}
		return c
	}

	assert.NoError(t, valid().Validate())

	c := valid()
	c.PageURLs = nil
	assert.Error(t, c.Validate())

	c = valid()
	c.SettingsBackend = "sqlite"
	assert.Error(t, c.Validate())

	c = valid()
	c.RefreshInterval = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.RatesURL = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.RedisStreamCount = 0
	assert.Error(t, c.Validate())
}
