package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	RedisURL  string
	JWTSecret string

	LogLevel  string
	LogFormat string

	// All users share one day boundary for the daily claim, regardless of
	// where they connect from.
	ClaimTimezone  string
	ClaimRewardMin int
	ClaimRewardMax int
	ClaimCooldown  time.Duration

	GiftLockTTL   time.Duration
	AuditInterval time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL:  os.Getenv("REDIS_URL"),
		JWTSecret: getEnv("JWT_SECRET", "12345"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ClaimTimezone: getEnv("CLAIM_TIMEZONE", "Asia/Jakarta"),
	}

	var err error
	cfg.ClaimRewardMin, err = parseInt(getEnv("CLAIM_REWARD_MIN", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLAIM_REWARD_MIN: %w", err)
	}
	cfg.ClaimRewardMax, err = parseInt(getEnv("CLAIM_REWARD_MAX", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLAIM_REWARD_MAX: %w", err)
	}
	if cfg.ClaimRewardMin < 1 || cfg.ClaimRewardMax < cfg.ClaimRewardMin {
		return nil, fmt.Errorf("invalid claim reward range: %d..%d", cfg.ClaimRewardMin, cfg.ClaimRewardMax)
	}

	cfg.ClaimCooldown, err = parseDuration(getEnv("CLAIM_RATE_LIMIT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLAIM_RATE_LIMIT: %w", err)
	}
	cfg.GiftLockTTL, err = parseDuration(getEnv("GIFT_LOCK_TTL", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GIFT_LOCK_TTL: %w", err)
	}
	cfg.AuditInterval, err = parseDuration(getEnv("LEDGER_AUDIT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_AUDIT_INTERVAL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
