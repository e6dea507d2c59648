package config

import (
	"fmt"
	"os"
	"time"

	"anoa.com/bloodlink/pkg/database"
	"anoa.com/bloodlink/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	Database database.Config
	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	Log logger.LogConfig

	RateLimitAuth    string
	RateLimitRequest time.Duration
	RateLimitPledge  time.Duration
	LoginMaxAttempts int
	LoginLockout     time.Duration

	ReconcileSchedule string

	SeedBankEmail    string
	SeedBankPassword string
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", "development")
	cfg := &Config{
		AppEnv:         appEnv,
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		Database: database.Config{
			Driver:     getEnv("DB_DRIVER", database.DriverPostgres),
			Host:       getEnv("DB_HOST", "localhost"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   os.Getenv("DB_PASS"),
			Name:       getEnv("DB_NAME", "bloodlink"),
			Port:       getEnv("DB_PORT", "5432"),
			SQLitePath: getEnv("SQLITE_PATH", "bloodlink.db"),
			Debug:      cast.ToBool(getEnv("DB_DEBUG", "false")),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTTTL:    time.Duration(cast.ToInt(getEnv("JWT_TTL_MINUTES", "60"))) * time.Minute,

		Log: logger.LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Filename:   os.Getenv("LOG_FILENAME"),
			MaxSize:    cast.ToInt(getEnv("LOG_MAX_SIZE", "100")),
			MaxAge:     cast.ToInt(getEnv("LOG_MAX_AGE", "7")),
			MaxBackups: cast.ToInt(getEnv("LOG_MAX_BACKUPS", "3")),
			Dev:        appEnv == "development",
		},

		RateLimitAuth:    getEnv("RATE_LIMIT_AUTH", "20-M"),
		LoginMaxAttempts: cast.ToInt(getEnv("LOGIN_MAX_ATTEMPTS", "5")),

		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 10m"),

		SeedBankEmail:    getEnv("SEED_BANK_EMAIL", "bank@bloodlink.local"),
		SeedBankPassword: getEnv("SEED_BANK_PASSWORD", "bank123"),
	}

	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: must be positive")
	}

	var err error
	if cfg.RateLimitRequest, err = getDuration("RATE_LIMIT_REQUEST", "30s"); err != nil {
		return nil, err
	}
	if cfg.RateLimitPledge, err = getDuration("RATE_LIMIT_PLEDGE", "2s"); err != nil {
		return nil, err
	}
	if cfg.LoginLockout, err = getDuration("LOGIN_LOCKOUT", "15m"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key, fallback string) (time.Duration, error) {
	d, err := cast.ToDurationE(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
