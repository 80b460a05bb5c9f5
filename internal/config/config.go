package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageMySQL  = "mysql"
	StorageMemory = "memory"

	defaultJWTSecret = "dev-secret-change-in-production"
)

var ErrDefaultSecret = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port     string `env:"PORT" env-default:"8080"`
	Env      string `env:"ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	Storage       string `env:"STORAGE" env-default:"mysql"`
	DatabaseDSN   string `env:"DATABASE_DSN" env-default:"root:password@tcp(127.0.0.1:3306)/storefront?parseTime=true"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" env-default:"true"`

	JWTSecret  string        `env:"JWT_SECRET" env-default:"dev-secret-change-in-production"`
	JWTExpiry  time.Duration `env:"JWT_EXPIRY" env-default:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" env-default:"10"`

	Redis RedisConfig

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173" env-separator:","`
	RateLimitRPS       float64  `env:"AUTH_RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst     int      `env:"AUTH_RATE_LIMIT_BURST" env-default:"10"`
}

// RedisConfig configures the token denylist. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return ErrDefaultSecret
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry)
	}
	switch c.Storage {
	case StorageMySQL, StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMySQL, StorageMemory, c.Storage)
	}
	return nil
}

// IsProduction reports whether the server runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
