package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Env is the process environment layer.
type Env struct {
	Environment string
	DataDir     string
	Addr        string
	LogLevel    string
}

func LoadEnv() *Env {
	// Load .env file if it exists
	godotenv.Load()

	return &Env{
		Environment: getEnv("SWINGSIM_ENV", "development"),
		DataDir:     getEnv("SWINGSIM_DATA_DIR", ".swingsim"),
		Addr:        getEnv("SWINGSIM_ADDR", ":8080"),
		LogLevel:    getEnv("SWINGSIM_LOG_LEVEL", "info"),
	}
}

func (e *Env) Production() bool { return e.Environment == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
