package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBUrl           string
	JWTSecret       string
	AppEnv          string
	LogLevel        string
	GatewayBaseURL  string
	GatewayAPIKey   string
	GatewayCurrency string
	GatewayTimeout  time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// The processor credential is injected, never defaulted, so a missing
	// key fails loudly at startup instead of at the first settlement.
	gatewayKey, exists := os.LookupEnv("PAYMENT_GATEWAY_API_KEY")
	if !exists || gatewayKey == "" {
		return nil, fmt.Errorf("PAYMENT_GATEWAY_API_KEY is required")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DBUrl:           getEnv("DB_URL", ""),
		JWTSecret:       jwtSecret,
		AppEnv:          normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		GatewayBaseURL:  getEnv("PAYMENT_GATEWAY_URL", "https://api.stripe.com"),
		GatewayAPIKey:   gatewayKey,
		GatewayCurrency: getEnv("PAYMENT_GATEWAY_CURRENCY", "usd"),
		GatewayTimeout:  time.Duration(getEnvInt("PAYMENT_GATEWAY_TIMEOUT_SECONDS", 10)) * time.Second,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
