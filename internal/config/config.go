package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode  string // Set via flag, not env
	LogLevel string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string

	// Server
	ApiPort        string
	ServiceApiPort string

	// reCAPTCHA
	RecaptchaVerifyURL     string
	RecaptchaVerifyTimeout time.Duration

	// Comment recovery
	RecoveryHashSecret string
	StashTTL           time.Duration
	StashPurgeCron     string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "commentguard")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.RecoveryHashSecret, err = getRequiredEnv("RECOVERY_HASH_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.RecaptchaVerifyURL = getEnv("RECAPTCHA_VERIFY_URL", "http://www.google.com/recaptcha/api/verify")
	cfg.StashPurgeCron = getEnv("STASH_PURGE_CRON", "@every 1h")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	verifyTimeoutMillis, err := strconv.ParseInt(getEnv("RECAPTCHA_VERIFY_TIMEOUT_MS", "5000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RECAPTCHA_VERIFY_TIMEOUT_MS: %w", err)
	}
	cfg.RecaptchaVerifyTimeout = time.Duration(verifyTimeoutMillis) * time.Millisecond

	stashTTLHours, err := strconv.ParseInt(getEnv("STASH_TTL_HOURS", "72"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STASH_TTL_HOURS: %w", err)
	}
	cfg.StashTTL = time.Duration(stashTTLHours) * time.Hour

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
