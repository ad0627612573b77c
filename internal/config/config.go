package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr            string
	DatabaseURL     string
	DatabaseDriver  string
	AppEnv          string
	LogLevel        string
	LogFormat       string
	AllowOrigins    string
	RecentLimit     int
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, after merging a local .env
// file when one exists.
func Load() Config {
	_ = godotenv.Load() // .env is optional outside local development

	return Config{
		Addr:            getEnv("APP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", "file:recommendations.db"),
		DatabaseDriver:  getEnv("DATABASE_DRIVER", ""),
		AppEnv:          getEnv("APP_ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		AllowOrigins:    getEnv("CORS_ALLOW_ORIGINS", "*"),
		RecentLimit:     getEnvInt("RECENT_LIMIT", 10),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// IsTest reports whether the test-support routes should be mounted.
func (c Config) IsTest() bool {
	return c.AppEnv == "test"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
