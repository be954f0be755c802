package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment values accepted by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	Tenancy   TenancyConfig
	Directory DirectoryConfig
	RateLimit RateLimitConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// TenancyConfig carries the resolver constants.
type TenancyConfig struct {
	// PlatformDomain is the wildcard apex every tenant subdomain hangs off,
	// e.g. "warden.example" serves "<subdomain>.warden.example".
	PlatformDomain string
	// ReservedLabel is the platform's own subdomain, e.g. "app". Hosts under
	// it resolve to the tenant whose slug is DefaultTenantSlug.
	ReservedLabel string
	// LocalDevHost is the canonical local development host, port included.
	LocalDevHost string
	// DefaultTenantSlug identifies the platform's own tenant record.
	DefaultTenantSlug string
}

// DirectoryConfig configures the external tenant directory client.
// An empty BaseURL disables the directory lookup step entirely.
type DirectoryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RateLimitConfig configures the generic fixed-window limiter.
type RateLimitConfig struct {
	SweepInterval time.Duration

	// When RedisAddr is set the limiter counts in redis instead of process
	// memory, so horizontally scaled replicas share windows.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SubmitLimit  int
	SubmitWindow time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "warden"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: normalizeEnvironment(getenv("APP_ENV", EnvDevelopment)),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Tenancy: TenancyConfig{
			PlatformDomain:    strings.ToLower(getenv("PLATFORM_DOMAIN", "warden.example")),
			ReservedLabel:     strings.ToLower(getenv("PLATFORM_RESERVED_LABEL", "app")),
			LocalDevHost:      strings.ToLower(getenv("LOCAL_DEV_HOST", "localhost:3000")),
			DefaultTenantSlug: strings.ToLower(getenv("DEFAULT_TENANT_SLUG", "default")),
		},
		Directory: DirectoryConfig{
			BaseURL: strings.TrimSpace(getenv("TENANT_DIRECTORY_URL", "")),
			Timeout: getenvDuration("TENANT_DIRECTORY_TIMEOUT", 2*time.Second),
		},
		RateLimit: RateLimitConfig{
			SweepInterval: getenvDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			SubmitLimit:   getenvInt("REPORT_SUBMIT_LIMIT", 3),
			SubmitWindow:  getenvDuration("REPORT_SUBMIT_WINDOW", 24*time.Hour),
		},
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "warden"),
		DBUser:            getenv("DATABASE_USER", "warden"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),
	}
}

// IsProduction reports whether the app runs in production mode. The resolver
// dev fallback is gated on this and must never fire when it returns true.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func normalizeEnvironment(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case EnvProduction, "prod":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
