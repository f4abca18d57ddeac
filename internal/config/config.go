package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	CachePath        string
	LogLevel         string
	LogFormat        string
	DailyGoalMinutes int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CachePath:   getEnv("CACHE_PATH", "intentd.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CachePath == "" {
		return nil, fmt.Errorf("CACHE_PATH must not be empty")
	}

	goal := getEnv("DAILY_GOAL_MINUTES", "120")
	minutes, err := strconv.Atoi(goal)
	if err != nil {
		return nil, fmt.Errorf("DAILY_GOAL_MINUTES must be an integer: %w", err)
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("DAILY_GOAL_MINUTES must be positive, got %d", minutes)
	}
	cfg.DailyGoalMinutes = minutes

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
