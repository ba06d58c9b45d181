package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values for STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// defaultJWTSecret is only acceptable outside production.
const defaultJWTSecret = "change-me"

// Config holds the runtime settings of the storefront service.
type Config struct {
	AppPort         string
	LogMode         string
	StoreDriver     string
	DatabaseDSN     string
	RedisAddr       string
	RabbitMQURL     string
	JWTSecret       string
	AdminAPIKey     string
	ContextTokenTTL time.Duration
	BcryptCost      int
	SeedCatalog     bool
}

// Load reads configuration from the environment, falling back to defaults.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through the given viper instance. Tests use it
// to inject values without touching the process environment.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_MODE", "dev")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:wholesale.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("CONTEXT_TOKEN_TTL", "720h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SEED_CATALOG", true)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		LogMode:         v.GetString("LOG_MODE"),
		StoreDriver:     strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AdminAPIKey:     v.GetString("ADMIN_API_KEY"),
		ContextTokenTTL: v.GetDuration("CONTEXT_TOKEN_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		SeedCatalog:     v.GetBool("SEED_CATALOG"),
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.ContextTokenTTL <= 0 {
		return nil, fmt.Errorf("CONTEXT_TOKEN_TTL must be positive")
	}
	return cfg, nil
}

// IsProduction reports whether LOG_MODE selects the production logger.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.LogMode) {
	case "prod", "production":
		return true
	}
	return false
}
