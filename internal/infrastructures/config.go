package infrastructures

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	APP_PORT         string
	DATABASE_URL     string
	AUTO_MIGRATE     bool
	REDIS_ADDRESS    string
	REDIS_PASSWORD   string
	SEQUENCE_BACKEND string
	API_KEYS         []string
	LOG_LEVEL        string
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		APP_PORT:         getEnv("APP_PORT", "8080"),
		DATABASE_URL:     os.Getenv("DATABASE_URL"),
		AUTO_MIGRATE:     getEnv("AUTO_MIGRATE", "true") == "true",
		REDIS_ADDRESS:    os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:   os.Getenv("REDIS_PASSWORD"),
		SEQUENCE_BACKEND: getEnv("SEQUENCE_BACKEND", "database"),
		API_KEYS:         splitList(os.Getenv("API_KEYS")),
		LOG_LEVEL:        getEnv("LOG_LEVEL", "info"),
	}

	return Config
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
