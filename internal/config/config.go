package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds everything read from the environment.
type AppConfig struct {
	// WeatherProvider selects the snapshot source: "weatherapi",
	// "openmeteo" or "mock".
	WeatherProvider string

	WeatherAPIKey string

	// HTTPTimeout bounds each outbound provider fetch.
	HTTPTimeout time.Duration

	// FetchInterval controls how often home locations are refreshed.
	FetchInterval time.Duration

	// Snapshot history retention.
	StoreMaxHistory int           // max snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max snapshot age (0 = unlimited)

	// DatabaseURL selects the Postgres record store; empty means in-memory.
	DatabaseURL string

	// RedisAddr selects the Redis change notifier; empty means in-process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.WeatherProvider = getenvDefault("WEATHER_PROVIDER", "weatherapi")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	switch cfg.WeatherProvider {
	case "weatherapi", "openmeteo", "mock":
	default:
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER: %q", cfg.WeatherProvider)
	}
	if cfg.WeatherProvider == "weatherapi" && cfg.WeatherAPIKey == "" {
		// No credentials: fall back to the deterministic generator.
		cfg.WeatherProvider = "mock"
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Refresh interval: default 15 minutes.
	intervalStr := getenvDefault("FETCH_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	// Snapshot retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
