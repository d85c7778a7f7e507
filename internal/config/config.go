package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	ListenAddr string

	// Database
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Storage gateway (signed URL resolution)
	StorageGatewayURL     string
	StorageGatewayTimeout time.Duration
	LogoBucket            string
	AvatarBucket          string

	// Matcher service
	MatcherBaseURL string
	MatcherTimeout time.Duration

	// Background score refresh
	ScoreRefreshInterval time.Duration

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	// .env is optional, real deployments use environment variables
	_ = godotenv.Load()

	cfg := &Config{
		// Defaults
		ListenAddr:            ":8080",
		StorageGatewayTimeout: 15 * time.Second,
		LogoBucket:            "company-logos",
		AvatarBucket:          "profile-images",
		MatcherTimeout:        30 * time.Second,
		ScoreRefreshInterval:  10 * time.Minute,
		LogLevel:              "info",
		RedisDB:               0,
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	cfg.StorageGatewayURL = os.Getenv("STORAGE_GATEWAY_URL")
	if cfg.StorageGatewayURL == "" {
		return nil, fmt.Errorf("STORAGE_GATEWAY_URL is required")
	}

	cfg.MatcherBaseURL = os.Getenv("MATCHER_BASE_URL")
	if cfg.MatcherBaseURL == "" {
		return nil, fmt.Errorf("MATCHER_BASE_URL is required")
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	} else {
		cfg.RedisAddr = "localhost:6379"
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if bucket := os.Getenv("LOGO_BUCKET"); bucket != "" {
		cfg.LogoBucket = bucket
	}

	if bucket := os.Getenv("AVATAR_BUCKET"); bucket != "" {
		cfg.AvatarBucket = bucket
	}

	if timeout := os.Getenv("STORAGE_GATEWAY_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid STORAGE_GATEWAY_TIMEOUT: %w", err)
		}
		cfg.StorageGatewayTimeout = d
	}

	if timeout := os.Getenv("MATCHER_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid MATCHER_TIMEOUT: %w", err)
		}
		cfg.MatcherTimeout = d
	}

	if interval := os.Getenv("SCORE_REFRESH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid SCORE_REFRESH_INTERVAL: %w", err)
		}
		cfg.ScoreRefreshInterval = d
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is empty")
	}

	if c.StorageGatewayURL == "" {
		return fmt.Errorf("storage gateway URL is empty")
	}

	if c.MatcherBaseURL == "" {
		return fmt.Errorf("matcher base URL is empty")
	}

	if c.ScoreRefreshInterval < time.Minute {
		return fmt.Errorf("score refresh interval too small: %v", c.ScoreRefreshInterval)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
