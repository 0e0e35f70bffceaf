package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// MissingColumnPolicy controls what happens when a task is created against a
// column name that does not exist for the project.
type MissingColumnPolicy string

const (
	MissingColumnFail       MissingColumnPolicy = "fail"
	MissingColumnAutoCreate MissingColumnPolicy = "auto_create"
)

type Config struct {
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	RedisHost       string
	RedisPort       string
	SessionSecret   string
	GinMode         string
	OpenAIAPIKey    string
	OnMissingColumn MissingColumnPolicy
}

func Load() *Config {
	// Optional .env for local development; ignored when absent.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := &Config{
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "boarduser"),
		DBPassword:    getEnv("DB_PASSWORD", "boardpassword"),
		DBName:        getEnv("DB_NAME", "project_board"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
	}

	switch policy := getEnv("ON_MISSING_COLUMN", "fail"); policy {
	case string(MissingColumnAutoCreate):
		cfg.OnMissingColumn = MissingColumnAutoCreate
	case string(MissingColumnFail):
		cfg.OnMissingColumn = MissingColumnFail
	default:
		log.Printf("Unknown ON_MISSING_COLUMN value %q, falling back to fail", policy)
		cfg.OnMissingColumn = MissingColumnFail
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
