// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// AdminConfig provides settings for the admin route group.
type AdminConfig interface {
	GetAdminAPIToken() string
}

// SchedulerConfig provides settings for the asynq-based sweep scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetCacheSweepInterval() time.Duration
}

// ProviderConfig provides shared tuning for every supplier adapter.
type ProviderConfig interface {
	GetProviderTimeout() time.Duration
	GetProviderMaxRetries() int
	GetProviderRetryBaseDelay() time.Duration
	GetProviderRateLimit() float64
	GetProviderRateBurst() int
}

// VendorCredentials holds one supplier's endpoint and OAuth2 client credentials.
// A vendor is enabled when its base URL is configured.
type VendorCredentials struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// Enabled reports whether this vendor should be registered.
func (v VendorCredentials) Enabled() bool { return v.BaseURL != "" }

// VendorConfig provides the per-supplier credentials.
type VendorConfig interface {
	GetSkyFare() VendorCredentials
	GetAeroLink() VendorCredentials
	GetStayHub() VendorCredentials
	GetRoomAtlas() VendorCredentials
	GetTransitGo() VendorCredentials
	GetTerraTours() VendorCredentials
	GetHotelOfferLimit() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	CacheSweepInterval     time.Duration
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	AdminAPIToken          string
	ProviderTimeout        time.Duration
	ProviderMaxRetries     int
	ProviderRetryBaseDelay time.Duration
	ProviderRateLimit      float64
	ProviderRateBurst      int
	HotelOfferLimit        int
	SkyFare                VendorCredentials
	AeroLink               VendorCredentials
	StayHub                VendorCredentials
	RoomAtlas              VendorCredentials
	TransitGo              VendorCredentials
	TerraTours             VendorCredentials
}

// Load reads configuration from the environment (and .env when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       getEnvInt("ASYNQ_CONCURRENCY", 10),
		CacheSweepInterval:     mustDuration(getEnv("CACHE_SWEEP_INTERVAL", "5m")),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AdminAPIToken:          getEnv("ADMIN_API_TOKEN", ""),
		ProviderTimeout:        mustDuration(getEnv("PROVIDER_TIMEOUT", "30s")),
		ProviderMaxRetries:     getEnvInt("PROVIDER_MAX_RETRIES", 3),
		ProviderRetryBaseDelay: mustDuration(getEnv("PROVIDER_RETRY_BASE_DELAY", "250ms")),
		ProviderRateLimit:      getEnvFloat("PROVIDER_RATE_LIMIT", 10),
		ProviderRateBurst:      getEnvInt("PROVIDER_RATE_BURST", 20),
		HotelOfferLimit:        getEnvInt("HOTEL_OFFER_LIMIT", 50),
		SkyFare:                vendorFromEnv("SKYFARE"),
		AeroLink:               vendorFromEnv("AEROLINK"),
		StayHub:                vendorFromEnv("STAYHUB"),
		RoomAtlas:              vendorFromEnv("ROOMATLAS"),
		TransitGo:              vendorFromEnv("TRANSITGO"),
		TerraTours:             vendorFromEnv("TERRATOURS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.ProviderMaxRetries < 1 {
		return nil, fmt.Errorf("PROVIDER_MAX_RETRIES must be at least 1")
	}

	return cfg, nil
}

func vendorFromEnv(prefix string) VendorCredentials {
	return VendorCredentials{
		BaseURL:      getEnv(prefix+"_BASE_URL", ""),
		ClientID:     getEnv(prefix+"_CLIENT_ID", ""),
		ClientSecret: getEnv(prefix+"_CLIENT_SECRET", ""),
	}
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetAdminAPIToken() string { return c.AdminAPIToken }

func (c *Config) GetRedisURL() string                    { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool              { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetCacheSweepInterval() time.Duration   { return c.CacheSweepInterval }

func (c *Config) GetProviderTimeout() time.Duration        { return c.ProviderTimeout }
func (c *Config) GetProviderMaxRetries() int               { return c.ProviderMaxRetries }
func (c *Config) GetProviderRetryBaseDelay() time.Duration { return c.ProviderRetryBaseDelay }
func (c *Config) GetProviderRateLimit() float64            { return c.ProviderRateLimit }
func (c *Config) GetProviderRateBurst() int                { return c.ProviderRateBurst }

func (c *Config) GetSkyFare() VendorCredentials    { return c.SkyFare }
func (c *Config) GetAeroLink() VendorCredentials   { return c.AeroLink }
func (c *Config) GetStayHub() VendorCredentials    { return c.StayHub }
func (c *Config) GetRoomAtlas() VendorCredentials  { return c.RoomAtlas }
func (c *Config) GetTransitGo() VendorCredentials  { return c.TransitGo }
func (c *Config) GetTerraTours() VendorCredentials { return c.TerraTours }
func (c *Config) GetHotelOfferLimit() int          { return c.HotelOfferLimit }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
