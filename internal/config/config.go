package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	// LLM Configuration
	Provider        string
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	MiMoAPIKey      string
	MiMoBaseURL     string
	HistoryTurns    int
	// Session management
	DeleteConfirmToken string
	PlaceholderIDs     []string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		// LLM Configuration
		Provider:        strings.ToLower(getEnv("LLM_PROVIDER", "mock")),
		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", ""),
		MiMoAPIKey:      getEnv("MIMO_API_KEY", ""),
		MiMoBaseURL:     getEnv("MIMO_BASE_URL", ""),
		HistoryTurns:    getEnvInt("HISTORY_TURNS", DefaultHistoryTurns),
		// Session management
		DeleteConfirmToken: getEnv("DELETE_CONFIRM_PASSWORD", DefaultDeleteConfirmToken),
		PlaceholderIDs:     []string{"default_user", "test"},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return defaultValue
	}
	return n
}
