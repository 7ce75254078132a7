package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	StoreDriver string
	DatabaseURL string
	Redis       RedisConfig

	JWTSecret string
	JWTExpiry time.Duration

	MetricsPort string

	Breaker BreakerConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type BreakerConfig struct {
	Timeout     time.Duration
	MaxFailures uint32
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtExpiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}

	breakerTimeout, err := time.ParseDuration(getEnv("BREAKER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_TIMEOUT: %w", err)
	}

	maxFailures, err := strconv.ParseUint(getEnv("BREAKER_MAX_FAILURES", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		StoreDriver: getEnv("STORE_DRIVER", DriverPostgres),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Prefix:   getEnv("REDIS_PREFIX", "hydra"),
		},

		JWTSecret: getEnvOrPanic("JWT_SECRET"),
		JWTExpiry: jwtExpiry,

		MetricsPort: getEnv("METRICS_PORT", "9090"),

		Breaker: BreakerConfig{
			Timeout:     breakerTimeout,
			MaxFailures: uint32(maxFailures),
		},
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s store", DriverPostgres)
		}
	case DriverRedis, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
