package config

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	Port         string
	Env          string
	DatabasePath string
	JWTSecret    string
	JWTExpiry    time.Duration
	AIAPIKey     string
	AIBaseURL    string
	AIModel      string
}

func Load() Config {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		DatabasePath: getEnv("DATABASE_PATH", "chatdiary.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry:    24 * time.Hour,
		AIAPIKey:     os.Getenv("AI_API_KEY"),
		AIBaseURL:    getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		AIModel:      getEnv("AI_MODEL", "gemini-1.5-flash"),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
