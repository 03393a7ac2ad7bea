package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	SocialReconcileEvery time.Duration
	NotifyRetryEvery     time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),
	}

	var err error
	cfg.SocialReconcileEvery, err = time.ParseDuration(getEnv("SOCIAL_RECONCILE_EVERY", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOCIAL_RECONCILE_EVERY: %w", err)
	}
	cfg.NotifyRetryEvery, err = time.ParseDuration(getEnv("NOTIFY_RETRY_EVERY", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_RETRY_EVERY: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
